package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaitanyashetty47/strengthos/internal/editor"
	"github.com/chaitanyashetty47/strengthos/internal/errors"
	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when the referenced plan does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// Service computes progress reports for a trainer viewing a client.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
}

// NewService creates a progress service backed by the shared database.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
	}
}

// ClientProgress builds the progress report for one client and plan. Any
// failure along the way degrades to a neutral report instead of an error:
// the progress view must always render.
func (s *Service) ClientProgress(ctx context.Context, userID, planID string, category editor.Category) Report {
	return s.clientProgressAt(ctx, userID, planID, category, time.Now())
}

func (s *Service) clientProgressAt(ctx context.Context, userID, planID string, category editor.Category, now time.Time) Report {
	report, err := s.computeReport(ctx, userID, planID, category, now)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "progress degraded to neutral report",
			slog.String("user_id", userID),
			slog.String("plan_id", planID),
			errors.SlogError(err))
		return neutralReport(category)
	}
	return report
}

func (s *Service) computeReport(ctx context.Context, userID, planID string, category editor.Category, now time.Time) (Report, error) {
	shape, err := s.repo.planShape(ctx, planID)
	if err != nil {
		return Report{}, fmt.Errorf("plan shape: %w", err)
	}
	completed, err := s.repo.completionCount(ctx, userID, planID)
	if err != nil {
		return Report{}, fmt.Errorf("completion count: %w", err)
	}

	rate := completionRate(completed, shape.totalWorkouts())
	report := Report{
		CompletionRate: rate,
		Status:         statusFor(rate),
		Milestones:     milestones(rate, category),
	}

	if category == editor.CategoryDeload {
		report.ImprovementLabel = deloadImprovement(rate)
		return report, nil
	}

	// The two comparison windows are independent queries; fetch them
	// concurrently and join before aggregating.
	var recent, previous []LogEntry
	windowStart := now.AddDate(0, 0, -windowDays)
	previousStart := now.AddDate(0, 0, -2*windowDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		recent, fetchErr = s.repo.logsBetween(gctx, userID, windowStart, now)
		if fetchErr != nil {
			return fmt.Errorf("recent window: %w", fetchErr)
		}
		return nil
	})
	g.Go(func() error {
		var fetchErr error
		previous, fetchErr = s.repo.logsBetween(gctx, userID, previousStart, windowStart)
		if fetchErr != nil {
			return fmt.Errorf("previous window: %w", fetchErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report.ImprovementLabel = signedLabel(improvementScore(recent, previous, category))
	return report, nil
}

// PersonalRecords lists the client's best estimated one-rep maxes. Unlike
// the report this is not degraded: a missing record list is an error worth
// surfacing.
func (s *Service) PersonalRecords(ctx context.Context, userID string) ([]PersonalRecord, error) {
	records, err := s.repo.personalRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("personal records: %w", err)
	}
	return records, nil
}

func neutralReport(category editor.Category) Report {
	return Report{
		CompletionRate:   0,
		Status:           statusFor(0),
		Milestones:       milestones(0, category),
		ImprovementLabel: neutralImprovement,
	}
}
