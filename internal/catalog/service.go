package catalog

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/chaitanyashetty47/strengthos/internal/errors"
	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
)

// ErrNotFound is returned when the referenced exercise does not exist.
var ErrNotFound = errors.NewSentinel("exercise not found")

// Service exposes the exercise library.
type Service struct {
	repo         *sqliteRepository
	logger       *slog.Logger
	openaiAPIKey string
}

// NewService creates a catalog service. An empty API key disables generation
// but leaves the rest of the library usable.
func NewService(db *sqlite.Database, logger *slog.Logger, openaiAPIKey string) *Service {
	return &Service{
		repo:         newSQLiteRepository(db, logger),
		logger:       logger,
		openaiAPIKey: openaiAPIKey,
	}
}

// List returns every exercise in the library.
func (s *Service) List(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// Get returns one exercise by ID.
func (s *Service) Get(ctx context.Context, id int) (Exercise, error) {
	exercise, err := s.repo.get(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise: %w", err)
	}
	return exercise, nil
}

// Info returns the exercise together with its description rendered to HTML.
func (s *Service) Info(ctx context.Context, id int) (Exercise, template.HTML, error) {
	exercise, err := s.repo.get(ctx, id)
	if err != nil {
		return Exercise{}, "", fmt.Errorf("get exercise: %w", err)
	}
	html, err := RenderDescription(exercise.DescriptionMarkdown)
	if err != nil {
		return Exercise{}, "", fmt.Errorf("render description: %w", err)
	}
	return exercise, html, nil
}

// Generate creates a new catalog entry for the named exercise and stores it.
func (s *Service) Generate(ctx context.Context, name string) (Exercise, error) {
	if s.openaiAPIKey == "" {
		return Exercise{}, errors.New("exercise generation is disabled without an OpenAI API key")
	}

	generated, err := newDescriptionGenerator(s.openaiAPIKey).Generate(ctx, name)
	if err != nil {
		return Exercise{}, fmt.Errorf("generate exercise: %w", err)
	}

	exercise, err := s.repo.create(ctx, generated)
	if err != nil {
		return Exercise{}, fmt.Errorf("store generated exercise: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "exercise generated",
		slog.Int("exercise_id", exercise.ID),
		slog.String("name", exercise.Name))
	return exercise, nil
}
