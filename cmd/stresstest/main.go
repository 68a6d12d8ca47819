// Command stresstest drives concurrent plan-editing sessions against a
// running instance to shake out contention in the editor and storage layers.
//
// The target's login flow lives outside this service, so the operator mints a
// trainer session and passes its cookie value through the
// STRENGTHOS_SESSION_TOKEN environment variable.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chaitanyashetty47/strengthos/internal/logging"
	"github.com/chaitanyashetty47/strengthos/internal/testhelpers"
)

const (
	expectedArgsCount       = 2
	numScenarios            = 20
	maxConcurrentOperations = 5
	scenarioTimeout         = 60 * time.Second
	requestTimeout          = 10 * time.Second
	successRateThreshold    = 90.0
	percentageMultiplier    = 100.0
	editBurstSize           = 25
)

// apiClient is a thin JSON client carrying the trainer session cookie.
type apiClient struct {
	baseURL    string
	token      string
	cookieName string
	httpClient *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL:    baseURL,
		token:      token,
		cookieName: "session",
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.token})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}
	if out != nil {
		if err = json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// planScenario runs one full editing session: create a plan, hammer the
// action endpoint with a burst of structural edits, validate, persist, and
// read the progress report back.
func planScenario(ctx context.Context, client *apiClient, clientID string) error {
	var created struct {
		ID string `json:"id"`
	}
	err := client.do(ctx, http.MethodPost, "/plans", map[string]string{
		"clientId":  clientID,
		"startDate": time.Now().Format("2006-01-02"),
	}, &created)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}

	actions := buildEditBurst()
	for i, action := range actions {
		var dispatched struct {
			Result struct {
				Rejected bool   `json:"rejected"`
				Reason   string `json:"reason"`
			} `json:"result"`
		}
		if err = client.do(ctx, http.MethodPost, "/plans/"+created.ID+"/actions", action, &dispatched); err != nil {
			return fmt.Errorf("dispatch action %d: %w", i, err)
		}
		if dispatched.Result.Rejected {
			return fmt.Errorf("action %d rejected: %s", i, dispatched.Result.Reason)
		}
	}

	var validation struct {
		IsValid     bool `json:"isValid"`
		TotalErrors int  `json:"totalErrors"`
	}
	if err = client.do(ctx, http.MethodGet, "/plans/"+created.ID+"/validation", nil, &validation); err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}

	if err = client.do(ctx, http.MethodPost, "/plans/"+created.ID+"/save", nil, nil); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	var report struct {
		Status string `json:"status"`
	}
	path := "/clients/" + clientID + "/plans/" + created.ID + "/progress"
	if err = client.do(ctx, http.MethodGet, path, nil, &report); err != nil {
		return fmt.Errorf("fetch progress: %w", err)
	}
	if report.Status == "" {
		return fmt.Errorf("progress report missing status")
	}
	return nil
}

// buildEditBurst produces a fixed sequence of editor actions that grows the
// plan without tripping any structural bound.
func buildEditBurst() []map[string]any {
	actions := []map[string]any{
		{"type": "ADD_WEEK"},
		{"type": "ADD_WEEK"},
		{"type": "ADD_DAY", "week": 1},
		{"type": "RENAME_DAY", "week": 1, "day": 1, "title": "Heavy lower"},
		{"type": "SELECT_WEEK_DAY", "week": 2, "day": 1},
		{"type": "DUPLICATE_WEEK", "week": 2},
	}
	for len(actions) < editBurstSize {
		actions = append(actions, map[string]any{
			"type": "UPDATE_META", "title": fmt.Sprintf("Stress block %d", len(actions)),
		})
	}
	return actions
}

func runLoadTest(ctx context.Context, client *apiClient, clientID string, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_scenarios", numScenarios))

	var successCount, failureCount int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for i := range numScenarios {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			if err := planScenario(scenarioCtx, client, clientID); err != nil {
				atomic.AddInt64(&failureCount, 1)
				// Log individual failures but don't stop the entire test.
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("scenario", i),
					slog.Any("error", err))
				return nil
			}
			atomic.AddInt64(&successCount, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount) / float64(numScenarios) * percentageMultiplier

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount),
		slog.Int64("failed", failureCount),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}
	token := os.Getenv("STRENGTHOS_SESSION_TOKEN")
	if token == "" {
		logger.LogAttrs(ctx, slog.LevelError, "STRENGTHOS_SESSION_TOKEN must carry a trainer session cookie")
		os.Exit(1)
	}
	clientID := os.Getenv("STRENGTHOS_STRESS_CLIENT_ID")
	if clientID == "" {
		clientID = "client-1"
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := newAPIClient(url, token)

	// Probe the health endpoint before piling on load.
	if err := client.do(ctx, http.MethodGet, "/api/healthy", nil, nil); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not healthy", slog.Any("error", err))
		os.Exit(1)
	}

	if err := runLoadTest(ctx, client, clientID, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)))
}
