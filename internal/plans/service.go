// Package plans persists workout plan documents and the completion records
// clients produce while following them.
package plans

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaitanyashetty47/strengthos/internal/editor"
	"github.com/chaitanyashetty47/strengthos/internal/errors"
	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
	"github.com/google/uuid"
)

// ErrNotFound is returned when the referenced plan does not exist.
var ErrNotFound = errors.NewSentinel("plan not found")

// Summary is the listing row for a client's plans.
type Summary struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"clientId"`
	Title         string          `json:"title"`
	Category      editor.Category `json:"category"`
	Status        editor.Status   `json:"status"`
	StartDate     time.Time       `json:"startDate"`
	DurationWeeks int             `json:"durationWeeks"`
}

// Service handles plan persistence for the editor.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
}

// NewService creates a plan service backed by the shared database.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
	}
}

// Create stores a new plan document and returns its identifier.
func (s *Service) Create(ctx context.Context, trainerID string, state editor.State) (string, error) {
	id := uuid.NewString()
	if err := s.repo.create(ctx, id, trainerID, state); err != nil {
		return "", fmt.Errorf("create plan: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "plan created",
		slog.String("plan_id", id),
		slog.String("trainer_id", trainerID),
		slog.String("client_id", state.Meta.ClientID))
	return id, nil
}

// Get hydrates a stored plan into an editor document.
func (s *Service) Get(ctx context.Context, id string) (editor.State, error) {
	state, err := s.repo.get(ctx, id)
	if err != nil {
		return editor.State{}, fmt.Errorf("get plan: %w", err)
	}
	return state, nil
}

// Save replaces the stored document with the given snapshot.
func (s *Service) Save(ctx context.Context, id string, state editor.State) error {
	if err := s.repo.save(ctx, id, state); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// List returns the plans assigned to a client, newest first.
func (s *Service) List(ctx context.Context, clientID string) ([]Summary, error) {
	summaries, err := s.repo.list(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return summaries, nil
}

// RecordCompletion marks a workout day complete for a client. It is
// idempotent so a double tap in the client app does not error.
func (s *Service) RecordCompletion(ctx context.Context, userID, planID string, week, day int) error {
	if err := s.repo.recordCompletion(ctx, userID, planID, week, day, time.Now()); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}
