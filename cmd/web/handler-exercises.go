package main

import (
	"log/slog"
	"net/http"

	"github.com/chaitanyashetty47/strengthos/internal/catalog"
	"github.com/chaitanyashetty47/strengthos/internal/errors"
)

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.catalogService.List(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list exercises"))
		return
	}
	app.respondJSON(w, r, http.StatusOK, map[string]any{"exercises": exercises})
}

func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIntParam(w, r, "exerciseID")
	if !ok {
		return
	}
	exercise, html, err := app.catalogService.Info(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "exercise info", slog.Int("exercise_id", id)))
		return
	}
	app.respondJSON(w, r, http.StatusOK, map[string]any{
		"exercise": exercise,
		"html":     html,
	})
}

func (app *application) exerciseGeneratePOST(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Name string `json:"name"`
	}
	if !app.readJSON(w, r, &form) {
		return
	}
	if form.Name == "" {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	exercise, err := app.catalogService.Generate(r.Context(), form.Name)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "generate exercise", slog.String("name", form.Name)))
		return
	}
	app.respondJSON(w, r, http.StatusCreated, exercise)
}
