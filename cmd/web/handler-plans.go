package main

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/chaitanyashetty47/strengthos/internal/contexthelpers"
	"github.com/chaitanyashetty47/strengthos/internal/editor"
	"github.com/chaitanyashetty47/strengthos/internal/errors"
	"github.com/chaitanyashetty47/strengthos/internal/plans"
)

// loadPlanState returns the live draft state for the plan when one exists,
// falling back to the persisted document.
func (app *application) loadPlanState(r *http.Request, planID string) (editor.State, error) {
	if store, ok := app.drafts.get(planID); ok {
		return store.State(), nil
	}
	return app.planService.Get(r.Context(), planID)
}

func (app *application) planCreatePOST(w http.ResponseWriter, r *http.Request) {
	var form struct {
		ClientID  string `json:"clientId"`
		StartDate string `json:"startDate"`
	}
	if !app.readJSON(w, r, &form) {
		return
	}
	startDate, err := time.Parse(time.DateOnly, form.StartDate)
	if err != nil || form.ClientID == "" {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	state := editor.NewState(form.ClientID, startDate)
	trainerID := contexthelpers.AuthenticatedUserID(r.Context())
	id, err := app.planService.Create(r.Context(), trainerID, state)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "create plan"))
		return
	}
	store := app.drafts.getOrCreate(id, state)

	app.respondJSON(w, r, http.StatusCreated, map[string]any{
		"id":    id,
		"state": store.State(),
	})
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("planID")
	state, err := app.loadPlanState(r, planID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "load plan", slog.String("plan_id", planID)))
		return
	}
	app.respondJSON(w, r, http.StatusOK, map[string]any{"state": state})
}

func (app *application) planActionPOST(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("planID")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	action, err := editor.DecodeAction(body)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	store, ok := app.drafts.get(planID)
	if !ok {
		state, err := app.planService.Get(r.Context(), planID)
		if err != nil {
			if errors.Is(err, plans.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			app.serverError(w, r, errors.Wrap(err, "hydrate draft", slog.String("plan_id", planID)))
			return
		}
		store = app.drafts.getOrCreate(planID, state)
	}

	result := store.Dispatch(action)
	state := store.State()
	app.respondJSON(w, r, http.StatusOK, map[string]any{
		"result":     result,
		"state":      state,
		"validation": editor.Validate(state),
	})
}

func (app *application) planSavePOST(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("planID")
	state, err := app.loadPlanState(r, planID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "load plan", slog.String("plan_id", planID)))
		return
	}
	if err := app.planService.Save(r.Context(), planID, state); err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "save plan", slog.String("plan_id", planID)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) planValidationGET(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("planID")
	state, err := app.loadPlanState(r, planID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "load plan", slog.String("plan_id", planID)))
		return
	}
	app.respondJSON(w, r, http.StatusOK, editor.Validate(state))
}

func (app *application) planCompleteDayPOST(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("planID")
	week, ok := app.parseIntParam(w, r, "week")
	if !ok {
		return
	}
	day, ok := app.parseIntParam(w, r, "day")
	if !ok {
		return
	}

	userID := contexthelpers.AuthenticatedUserID(r.Context())
	if err := app.planService.RecordCompletion(r.Context(), userID, planID, week, day); err != nil {
		app.serverError(w, r, errors.Wrap(err, "record completion", slog.String("plan_id", planID)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
