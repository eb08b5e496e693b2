package transition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyforge/internal/logging"
	"storyforge/internal/notifications"
	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
)

// TriggerForced is the audit trigger recorded for forced transitions.
const TriggerForced = "operator-override"

// Request describes one requested stage change.
type Request struct {
	ItemID   string
	Target   stage.Stage
	Trigger  string
	Metadata map[string]any
	Actor    string
}

// Result reports the outcome of one executed (or rejected) stage change.
type Result struct {
	Success      bool        `json:"success"`
	ItemID       string      `json:"itemId"`
	OldStage     stage.Stage `json:"oldStage,omitempty"`
	NewStage     stage.Stage `json:"newStage,omitempty"`
	AuditEntryID string      `json:"auditEntryId,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// Service executes stage changes against an injected store.
type Service struct {
	store    *pipeline.Store
	notifier notifications.Service
	logger   *slog.Logger
	maxBatch int
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithNotifier attaches a notifier invoked after successful commits. Delivery
// failures are logged and never affect transition outcomes.
func WithNotifier(n notifications.Service) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logging.WithComponent(logger, "transition")
		}
	}
}

// WithMaxBatchSize bounds ApplyBatch input length. Zero means unlimited.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) { s.maxBatch = n }
}

// NewService constructs a transition service around the provided store.
func NewService(store *pipeline.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("transition service requires a store")
	}
	svc := &Service{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (r Request) validate() error {
	if strings.TrimSpace(r.ItemID) == "" {
		return fmt.Errorf("item id is required: %w", pipeline.ErrNotFound)
	}
	if !stage.IsCanonical(r.Target) {
		return fmt.Errorf("target stage %q: %w", r.Target, stage.ErrUnknownStage)
	}
	if strings.TrimSpace(r.Trigger) == "" {
		return ErrTriggerRequired
	}
	return nil
}

// Transition performs one validated stage change as a single durable unit.
// The stage update and its audit entry commit together; a rejected request
// leaves the item and its audit history untouched.
func (s *Service) Transition(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return failureResult(req, err), err
	}

	var (
		res       Result
		itemTitle string
	)
	err := s.store.WithTx(ctx, func(tx *pipeline.Tx) error {
		item, err := tx.ItemByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		itemTitle = item.Title

		current, err := stage.Normalize(string(item.Stage))
		if err != nil {
			return fmt.Errorf("stored stage for item %s: %w", item.ID, err)
		}
		if !stage.IsValidTransition(current, req.Target) {
			return &InvalidTransitionError{From: current, To: req.Target}
		}

		entry, err := s.writeChange(ctx, tx, item.ID, current, req, time.Now().UTC())
		if err != nil {
			return err
		}
		res = Result{
			Success:      true,
			ItemID:       item.ID,
			OldStage:     current,
			NewStage:     req.Target,
			AuditEntryID: entry.ID,
		}
		return nil
	})
	if err != nil {
		s.logRejection(ctx, req, err)
		return failureResult(req, err), err
	}

	s.logger.InfoContext(ctx, "stage transitioned",
		slog.String("item", res.ItemID),
		slog.String("from", string(res.OldStage)),
		slog.String("to", string(res.NewStage)),
		slog.String("trigger", req.Trigger),
	)
	s.notifyTransition(ctx, itemTitle, res, false, "")
	return res, nil
}

// ForceTransition bypasses graph validation for operator recovery. The change
// is still transactional and produces exactly one audit entry whose metadata
// marks it as forced and records the reason, so overrides stay forensically
// visible in history.
func (s *Service) ForceTransition(ctx context.Context, itemID string, target stage.Stage, reason, actor string) (Result, error) {
	if strings.TrimSpace(reason) == "" {
		err := ErrReasonRequired
		return failureResult(Request{ItemID: itemID, Target: target}, err), err
	}
	req := Request{
		ItemID:  itemID,
		Target:  target,
		Trigger: TriggerForced,
		Metadata: map[string]any{
			"forced": true,
			"reason": reason,
		},
		Actor: actor,
	}
	if err := req.validate(); err != nil {
		return failureResult(req, err), err
	}

	var (
		res       Result
		itemTitle string
	)
	err := s.store.WithTx(ctx, func(tx *pipeline.Tx) error {
		item, err := tx.ItemByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		itemTitle = item.Title

		// No graph validation and no normalization failure path here: a
		// forced override must work even when the stored stage is a legacy
		// value nothing else recognizes.
		current := item.Stage
		if normalized, err := stage.Normalize(string(item.Stage)); err == nil {
			current = normalized
		}

		entry, err := s.writeChange(ctx, tx, item.ID, current, req, time.Now().UTC())
		if err != nil {
			return err
		}
		res = Result{
			Success:      true,
			ItemID:       item.ID,
			OldStage:     current,
			NewStage:     req.Target,
			AuditEntryID: entry.ID,
		}
		return nil
	})
	if err != nil {
		s.logRejection(ctx, req, err)
		return failureResult(req, err), err
	}

	s.logger.WarnContext(ctx, "stage transition forced",
		slog.String("item", res.ItemID),
		slog.String("from", string(res.OldStage)),
		slog.String("to", string(res.NewStage)),
		slog.String("reason", reason),
		slog.String("actor", actor),
	)
	s.notifyTransition(ctx, itemTitle, res, true, reason)
	return res, nil
}

// AllowedNextStages returns the stages the item may move to from its current
// stage under normal flow. Read-only.
func (s *Service) AllowedNextStages(ctx context.Context, itemID string) ([]stage.Stage, error) {
	item, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	current, err := stage.Normalize(string(item.Stage))
	if err != nil {
		return nil, fmt.Errorf("stored stage for item %s: %w", item.ID, err)
	}
	return stage.AllowedNextStages(current), nil
}

// writeChange applies the stage update and audit insert through the supplied
// transaction. Callers own validation; this helper only persists.
func (s *Service) writeChange(ctx context.Context, tx *pipeline.Tx, itemID string, from stage.Stage, req Request, now time.Time) (*pipeline.AuditEntry, error) {
	if err := tx.SetItemStage(ctx, itemID, req.Target, now); err != nil {
		return nil, err
	}

	var metadataJSON string
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		metadataJSON = string(raw)
	}

	entry := &pipeline.AuditEntry{
		ID:           uuid.NewString(),
		ItemID:       itemID,
		OldStage:     from,
		NewStage:     req.Target,
		TriggerEvent: strings.TrimSpace(req.Trigger),
		MetadataJSON: metadataJSON,
		CreatedAt:    now,
		CreatedBy:    strings.TrimSpace(req.Actor),
	}
	if err := tx.InsertAudit(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) notifyTransition(ctx context.Context, title string, res Result, forced bool, reason string) {
	if s.notifier == nil {
		return
	}
	var err error
	switch {
	case forced:
		err = s.notifier.NotifyForcedTransition(ctx, title, res.OldStage, res.NewStage, reason)
	case res.NewStage == stage.StageCompleted:
		err = s.notifier.NotifyItemCompleted(ctx, title)
	case res.NewStage == stage.StageFailed:
		err = s.notifier.NotifyItemFailed(ctx, title, "")
	default:
		err = s.notifier.NotifyStageChanged(ctx, title, res.OldStage, res.NewStage)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			slog.String("item", res.ItemID),
			slog.Any("error", err),
		)
	}
}

func (s *Service) logRejection(ctx context.Context, req Request, err error) {
	var invalid *InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		s.logger.InfoContext(ctx, "transition rejected",
			slog.String("item", req.ItemID),
			slog.String("from", string(invalid.From)),
			slog.String("to", string(invalid.To)),
		)
	case errors.Is(err, pipeline.ErrNotFound):
		s.logger.InfoContext(ctx, "transition target missing",
			slog.String("item", req.ItemID),
		)
	default:
		s.logger.ErrorContext(ctx, "transition failed",
			slog.String("item", req.ItemID),
			slog.Any("error", err),
		)
	}
}

func failureResult(req Request, err error) Result {
	return Result{
		Success: false,
		ItemID:  req.ItemID,
		Error:   err.Error(),
	}
}
