package transition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
)

// ApplyBatch executes the ordered request list as one transaction. The first
// failing request (missing item, invalid edge, or storage error) rolls back
// every change in the batch, including requests that had already succeeded
// within it. The returned BatchError names the failing index and item.
func (s *Service) ApplyBatch(ctx context.Context, requests []Request) ([]Result, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	if s.maxBatch > 0 && len(requests) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d requests, limit %d", ErrBatchTooLarge, len(requests), s.maxBatch)
	}

	var results []Result
	err := s.store.WithTx(ctx, func(tx *pipeline.Tx) error {
		// WithTx may re-run the whole function on a busy database; start from
		// a clean slate each attempt.
		results = results[:0]

		for i, req := range requests {
			res, err := s.applyOne(ctx, tx, req)
			if err != nil {
				return &BatchError{Index: i, ItemID: req.ItemID, Err: err}
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		s.logger.InfoContext(ctx, "batch rolled back",
			slog.Int("requests", len(requests)),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "batch applied", slog.Int("requests", len(results)))
	return results, nil
}

// applyOne validates and persists a single request inside an open batch
// transaction. Reads go through the transaction so each request observes the
// stage changes of the requests before it.
func (s *Service) applyOne(ctx context.Context, tx *pipeline.Tx, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	item, err := tx.ItemByID(ctx, req.ItemID)
	if err != nil {
		return Result{}, err
	}
	current, err := stage.Normalize(string(item.Stage))
	if err != nil {
		return Result{}, fmt.Errorf("stored stage for item %s: %w", item.ID, err)
	}
	if !stage.IsValidTransition(current, req.Target) {
		return Result{}, &InvalidTransitionError{From: current, To: req.Target}
	}

	entry, err := s.writeChange(ctx, tx, item.ID, current, req, time.Now().UTC())
	if err != nil {
		return Result{}, err
	}
	return Result{
		Success:      true,
		ItemID:       item.ID,
		OldStage:     current,
		NewStage:     req.Target,
		AuditEntryID: entry.ID,
	}, nil
}
