package sync

import (
	"context"
	"fmt"
	"time"

	"excursion-catalog/internal/domain"
	"excursion-catalog/internal/mappers"
	"excursion-catalog/internal/storage"

	"go.uber.org/zap"
)

// Store is the part of storage.Store a sync needs.
type Store interface {
	List(ctx context.Context) ([]storage.Record, error)
	Upsert(ctx context.Context, records []storage.Record) error
	Delete(ctx context.Context, ids []string) (int64, error)
}

type Result struct {
	Created int
	Updated int
	Deleted int64
}

// Apply writes the plan to the store. Creates and updates share one
// upsert stamped with now; deletes run afterwards.
func Apply(ctx context.Context, store Store, plan Plan, now time.Time, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var res Result
	changed := make([]domain.Excursion, 0, len(plan.Create)+len(plan.Update))
	changed = append(changed, plan.Create...)
	changed = append(changed, plan.Update...)
	if len(changed) > 0 {
		records, err := mappers.ToRecords(changed, now)
		if err != nil {
			return res, err
		}
		if err := store.Upsert(ctx, records); err != nil {
			return res, fmt.Errorf("sync: upsert: %w", err)
		}
	}
	res.Created = len(plan.Create)
	res.Updated = len(plan.Update)

	if len(plan.Delete) > 0 {
		ids := make([]string, 0, len(plan.Delete))
		for _, d := range plan.Delete {
			ids = append(ids, d.ID)
		}
		n, err := store.Delete(ctx, ids)
		if err != nil {
			return res, fmt.Errorf("sync: delete: %w", err)
		}
		res.Deleted = n
	}

	logger.Info("sync applied",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int64("deleted", res.Deleted))
	return res, nil
}

// Run loads the stored snapshot, diffs it against fresh and applies the
// result. With dryRun the plan is returned without touching the store.
func Run(ctx context.Context, store Store, fresh []domain.Excursion, now time.Time, dryRun bool, logger *zap.Logger) (Plan, Result, error) {
	stored, err := store.List(ctx)
	if err != nil {
		return Plan{}, Result{}, fmt.Errorf("sync: load snapshot: %w", err)
	}
	plan := Diff(fresh, stored)
	if len(plan.Skipped) > 0 {
		if logger == nil {
			logger = zap.NewNop()
		}
		for _, ex := range plan.Skipped {
			logger.Warn("excursion without a stable id not synced",
				zap.String("title", ex.Title), zap.String("url", ex.URL))
		}
	}
	if dryRun {
		return plan, Result{}, nil
	}
	res, err := Apply(ctx, store, plan, now, logger)
	return plan, res, err
}
