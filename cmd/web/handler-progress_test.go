package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/chaitanyashetty47/strengthos/internal/plans"
	"github.com/chaitanyashetty47/strengthos/internal/progress"
)

func Test_application_clientPlans(t *testing.T) {
	handle := newPlanTestServer(t)
	created := createTestPlan(t, handle)

	resp, payload := doJSON(t, handle.server, handle.client, http.MethodGet,
		"/clients/client-1/plans", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list plans: got status %d: %s", resp.StatusCode, payload)
	}
	listed := decodeBody[struct {
		Plans []plans.Summary `json:"plans"`
	}](t, payload)
	if got, want := len(listed.Plans), 1; got != want {
		t.Fatalf("got %d plans, want %d", got, want)
	}
	if got, want := listed.Plans[0].ID, created.ID; got != want {
		t.Errorf("got plan ID %s, want %s", got, want)
	}
}

func Test_application_clientPlansForbiddenForOtherClient(t *testing.T) {
	handle := newPlanTestServer(t)
	otherClient := signIn(t, handle.app, "client-2", false)

	resp, _ := doJSON(t, handle.server, otherClient, http.MethodGet,
		"/clients/client-1/plans", nil)
	if got, want := resp.StatusCode, http.StatusForbidden; got != want {
		t.Errorf("got status %d, want %d", got, want)
	}

	// Trainers may read any client's plans.
	resp, _ = doJSON(t, handle.server, handle.trainer, http.MethodGet,
		"/clients/client-1/plans", nil)
	if got, want := resp.StatusCode, http.StatusOK; got != want {
		t.Errorf("trainer access: got status %d, want %d", got, want)
	}
}

func Test_application_clientProgress(t *testing.T) {
	handle := newPlanTestServer(t)
	created := createTestPlan(t, handle)

	// The progress endpoint is trainer-only.
	resp, _ := doJSON(t, handle.server, handle.client, http.MethodGet,
		"/clients/client-1/plans/"+created.ID+"/progress", nil)
	if got, want := resp.StatusCode, http.StatusForbidden; got != want {
		t.Errorf("client access: got status %d, want %d", got, want)
	}

	resp, payload := doJSON(t, handle.server, handle.trainer, http.MethodGet,
		"/clients/client-1/plans/"+created.ID+"/progress", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("progress: got status %d: %s", resp.StatusCode, payload)
	}
	report := decodeBody[progress.Report](t, payload)
	if got, want := report.CompletionRate, 0; got != want {
		t.Errorf("got completion rate %d, want %d", got, want)
	}
	if got, want := report.Status, progress.StatusBehindSchedule; got != want {
		t.Errorf("got status %q, want %q", got, want)
	}
}

func Test_application_clientProgressMissingPlan(t *testing.T) {
	handle := newPlanTestServer(t)

	resp, _ := doJSON(t, handle.server, handle.trainer, http.MethodGet,
		"/clients/client-1/plans/no-such-plan/progress", nil)
	if got, want := resp.StatusCode, http.StatusNotFound; got != want {
		t.Errorf("got status %d, want %d", got, want)
	}
}

func Test_application_clientExport(t *testing.T) {
	handle := newPlanTestServer(t)
	createTestPlan(t, handle)

	// Clients may only export their own data.
	otherClient := signIn(t, handle.app, "client-2", false)
	resp, _ := doJSON(t, handle.server, otherClient, http.MethodGet, "/clients/client-1/export", nil)
	if got, want := resp.StatusCode, http.StatusForbidden; got != want {
		t.Errorf("other client export: got status %d, want %d", got, want)
	}

	resp, payload := doJSON(t, handle.server, handle.client, http.MethodGet, "/clients/client-1/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: got status %d: %s", resp.StatusCode, payload)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "user-export-client-1.sqlite3") {
		t.Errorf("Content-Disposition = %q, want the export file name", got)
	}
	if !bytes.HasPrefix(payload, []byte("SQLite format 3")) {
		t.Errorf("export body does not look like a SQLite database: %q", payload[:min(len(payload), 16)])
	}
}

func Test_application_clientRecords(t *testing.T) {
	handle := newPlanTestServer(t)

	resp, payload := doJSON(t, handle.server, handle.client, http.MethodGet,
		"/clients/client-1/records", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("records: got status %d: %s", resp.StatusCode, payload)
	}
	records := decodeBody[struct {
		Records []progress.PersonalRecord `json:"records"`
	}](t, payload)
	if got, want := len(records.Records), 0; got != want {
		t.Errorf("got %d records for a fresh client, want %d", got, want)
	}
}
