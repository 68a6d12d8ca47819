package main

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/chaitanyashetty47/strengthos/internal/contexthelpers"
	"github.com/chaitanyashetty47/strengthos/internal/errors"
	"github.com/chaitanyashetty47/strengthos/internal/plans"
)

// authorizeClientAccess refuses requests for another client's data unless the
// caller is a trainer. A false return means the 403 has already been sent.
func (app *application) authorizeClientAccess(w http.ResponseWriter, r *http.Request, userID string) bool {
	ctx := r.Context()
	if contexthelpers.IsTrainer(ctx) || contexthelpers.AuthenticatedUserID(ctx) == userID {
		return true
	}
	app.clientError(w, http.StatusForbidden)
	return false
}

func (app *application) clientPlansGET(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !app.authorizeClientAccess(w, r, userID) {
		return
	}
	summaries, err := app.planService.List(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list plans", slog.String("user_id", userID)))
		return
	}
	app.respondJSON(w, r, http.StatusOK, map[string]any{"plans": summaries})
}

func (app *application) clientProgressGET(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	planID := r.PathValue("planID")

	state, err := app.planService.Get(r.Context(), planID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "load plan", slog.String("plan_id", planID)))
		return
	}

	report := app.progressService.ClientProgress(r.Context(), userID, planID, state.Meta.Category)
	app.respondJSON(w, r, http.StatusOK, report)
}

// clientExportGET writes the user's complete data as a downloadable SQLite
// database.
func (app *application) clientExportGET(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !app.authorizeClientAccess(w, r, userID) {
		return
	}
	exportPath, err := app.db.ExportUserData(r.Context(), userID, app.exportsDir)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "export user data", slog.String("user_id", userID)))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.sqlite3")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(exportPath)+`"`)
	http.ServeFile(w, r, exportPath)
}

func (app *application) clientRecordsGET(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if !app.authorizeClientAccess(w, r, userID) {
		return
	}
	records, err := app.progressService.PersonalRecords(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "personal records", slog.String("user_id", userID)))
		return
	}
	app.respondJSON(w, r, http.StatusOK, map[string]any{"records": records})
}
