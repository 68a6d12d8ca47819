package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chaitanyashetty47/strengthos/internal/catalog"
	"github.com/chaitanyashetty47/strengthos/internal/plans"
	"github.com/chaitanyashetty47/strengthos/internal/progress"
	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
	"github.com/chaitanyashetty47/strengthos/internal/testhelpers"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(testhelpers.NewWriter(t), &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, user := range []struct {
		id   string
		name string
		role string
	}{
		{"trainer-1", "Petra", "trainer"},
		{"client-1", "Cliff", "client"},
		{"client-2", "Casey", "client"},
	} {
		_, err = db.ReadWrite.ExecContext(t.Context(),
			`INSERT INTO users (id, display_name, role) VALUES (?, ?, ?)`,
			user.id, user.name, user.role)
		if err != nil {
			t.Fatalf("seed user %s: %v", user.id, err)
		}
	}

	return &application{
		logger:          logger,
		sessionManager:  initializeSessionManager(db),
		db:              db,
		planService:     plans.NewService(db, logger),
		progressService: progress.NewService(db, logger),
		catalogService:  catalog.NewService(db, logger, ""),
		flightRecorder:  nil,
		drafts:          newDraftRegistry(),
		exportsDir:      t.TempDir(),
	}
}

func newTestServer(t *testing.T) (*application, *httptest.Server) {
	t.Helper()
	app := newTestApplication(t)
	server := httptest.NewServer(app.routes())
	t.Cleanup(server.Close)
	return app, server
}

// signIn seeds a session the way the external login flow would and returns
// the cookie carrying its token.
func signIn(t *testing.T, app *application, userID string, isTrainer bool) *http.Cookie {
	t.Helper()
	ctx, err := app.sessionManager.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	app.sessionManager.Put(ctx, sessionKeyUserID, userID)
	app.sessionManager.Put(ctx, sessionKeyIsTrainer, isTrainer)
	token, _, err := app.sessionManager.Commit(ctx)
	if err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return &http.Cookie{Name: app.sessionManager.Cookie.Name, Value: token}
}

// doJSON performs a request against the test server, optionally marshalling
// body as JSON, and returns the response together with its read body.
func doJSON(
	t *testing.T,
	server *httptest.Server,
	cookie *http.Cookie,
	method string,
	path string,
	body any,
) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("close response body: %v", closeErr)
		}
	}()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, payload
}

func decodeBody[T any](t *testing.T, payload []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		t.Fatalf("unmarshal response %s: %v", payload, err)
	}
	return v
}
