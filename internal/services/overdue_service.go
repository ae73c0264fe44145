package services

import (
	"context"
	"log/slog"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
)

// overdueServiceImpl implements the OverdueService interface
type overdueServiceImpl struct {
	repo   repository.Repository
	now    Clock
	logger *slog.Logger
}

// NewOverdueService creates a new OverdueService instance
func NewOverdueService(repo repository.Repository, now Clock, logger *slog.Logger) OverdueService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &overdueServiceImpl{repo: repo, now: now, logger: logger}
}

// Recalculate runs the sweep if the principal carries the admin flag.
// Anonymous and regular users are both refused.
func (o *overdueServiceImpl) Recalculate(ctx context.Context, p domain.Principal) (int64, error) {
	if !p.IsAdmin() {
		return 0, errors.NewPermissionError("recalculate_overdue", "tasks")
	}
	return o.sweep(ctx, p.String())
}

// Sweep runs the sweep without a principal check.
func (o *overdueServiceImpl) Sweep(ctx context.Context) (int64, error) {
	return o.sweep(ctx, "operator")
}

func (o *overdueServiceImpl) sweep(ctx context.Context, actor string) (int64, error) {
	now := o.now()
	updated, err := o.repo.RecalculateOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	o.logger.InfoContext(ctx, "overdue recalculation finished", "actor", actor, "updated", updated, "now", now)
	return updated, nil
}
