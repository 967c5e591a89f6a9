// Package sweeper runs periodic maintenance: pruning prerequisite edges
// whose target project no longer exists and re-warming progress snapshots
// for recently edited curricula.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/pathworks/curriculum-engine/internal/curriculum"
	"github.com/pathworks/curriculum-engine/internal/storage"
)

// Sweeper is the periodic maintenance worker
type Sweeper struct {
	repo     storage.Repository
	manager  curriculum.Manager
	interval time.Duration

	lastSweep time.Time
}

// NewSweeper creates a maintenance worker
func NewSweeper(repo storage.Repository, manager curriculum.Manager, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Sweeper{
		repo:     repo,
		manager:  manager,
		interval: interval,
	}
}

// Start begins the worker in a goroutine
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	slog.Info("sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	slog.Debug("running sweep cycle")

	pruned, err := s.repo.PruneDanglingPrerequisites(ctx)
	if err != nil {
		slog.Error("failed to prune dangling prerequisites", "error", err)
	} else if pruned > 0 {
		slog.Info("pruned dangling prerequisite edges", "count", pruned)
	}

	since := s.lastSweep
	if since.IsZero() {
		since = time.Now().Add(-s.interval)
	}
	s.lastSweep = time.Now()

	ids, err := s.repo.ListCurriculaUpdatedSince(ctx, since)
	if err != nil {
		slog.Error("failed to list recently updated curricula", "error", err)
		return
	}
	if len(ids) == 0 {
		slog.Debug("no recently updated curricula")
		return
	}

	for _, id := range ids {
		if _, err := s.manager.GetProgress(ctx, id); err != nil {
			slog.Error("failed to warm progress snapshot", "curriculum_id", id, "error", err)
			continue
		}
		slog.Debug("progress snapshot warmed", "curriculum_id", id)
	}
}
