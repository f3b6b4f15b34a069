package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/directory"
	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// StatsUserRepository is the subset of UserRepository methods StatsService
// needs.
type StatsUserRepository interface {
	CountAll(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, t time.Time) (int64, error)
	CountCreatedSince(ctx context.Context, t time.Time) (int64, error)
	CountBanned(ctx context.Context, now time.Time) (int64, error)
	ScanClassification(ctx context.Context, visit func(store.Document)) error
}

// StatsService computes directory statistics. Every result is a snapshot
// labeled with its generation time; the constituent reads are not
// transactionally consistent with each other.
type StatsService struct {
	users  StatsUserRepository
	logger *slog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(users StatsUserRepository, logger *slog.Logger) *StatsService {
	return &StatsService{users: users, logger: logger}
}

// SystemStats gathers the dashboard scalar counts. Each count is one
// fast-count round trip; the seven are independent, so they run concurrently
// to bound latency instead of serially accumulating it.
func (s *StatsService) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	now := time.Now().UTC()
	dayStart := now.Truncate(24 * time.Hour)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &models.SystemStats{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveLast7Days, err = s.users.CountActiveSince(gctx, now.AddDate(0, 0, -7))
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveLast30Days, err = s.users.CountActiveSince(gctx, now.AddDate(0, 0, -30))
		return err
	})
	g.Go(func() (err error) {
		stats.NewToday, err = s.users.CountCreatedSince(gctx, dayStart)
		return err
	})
	g.Go(func() (err error) {
		stats.NewThisWeek, err = s.users.CountCreatedSince(gctx, weekStart)
		return err
	})
	g.Go(func() (err error) {
		stats.NewThisMonth, err = s.users.CountCreatedSince(gctx, monthStart)
		return err
	})
	g.Go(func() (err error) {
		stats.BannedUsers, err = s.users.CountBanned(gctx, now)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "system stats aggregation failed", slog.Any("error", err))
		return nil, err
	}
	return stats, nil
}

// UserStats produces the status and category breakdown from one
// classification scan over projected fields. Total is the number of scanned
// records, so Active + Inactive + Banned + Deleted always equals Total by
// construction; Inactive is derived by subtraction, never queried.
func (s *StatsService) UserStats(ctx context.Context) (*models.UserStats, error) {
	now := time.Now().UTC()
	stats := &models.UserStats{
		ByPlan:      make(map[string]int64),
		ByRole:      make(map[string]int64),
		GeneratedAt: now,
	}

	err := s.users.ScanClassification(ctx, func(d store.Document) {
		stats.Total++

		// Precedence: soft-deleted, then banned, then active.
		switch {
		case d.Bool(directory.FieldDeleted):
			stats.Deleted++
		case lockedPast(d, now):
			stats.Banned++
		default:
			stats.Active++
		}

		stats.ByPlan[categoryOrUnknown(d.String(directory.FieldPlan))]++
		stats.ByRole[categoryOrUnknown(d.String(directory.FieldRole))]++
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "user stats aggregation failed", slog.Any("error", err))
		return nil, err
	}

	stats.Inactive = stats.Total - stats.Active - stats.Banned - stats.Deleted
	return stats, nil
}

func lockedPast(d store.Document, now time.Time) bool {
	t := d.TimePtr(directory.FieldLockedUntil)
	return t != nil && t.After(now)
}

func categoryOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
