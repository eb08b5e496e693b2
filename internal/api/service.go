package api

import (
	"context"
	"time"

	"storyforge/internal/pipeline"
	"storyforge/internal/stage"
)

// ItemReader abstracts the persistence interactions needed for API queries.
type ItemReader interface {
	GetByID(ctx context.Context, id string) (*pipeline.Item, error)
	List(ctx context.Context, stages ...stage.Stage) ([]*pipeline.Item, error)
	ListByStage(ctx context.Context, st stage.Stage, page, pageSize int) (*pipeline.Page, error)
	History(ctx context.Context, itemID string, limit int) ([]*pipeline.AuditEntry, error)
	StageDistribution(ctx context.Context) (map[stage.Stage]int, error)
	StuckItems(ctx context.Context, threshold time.Duration) ([]*pipeline.Item, error)
	CheckItemsExist(ctx context.Context, ids []string) (*pipeline.ExistenceCheck, error)
	Health(ctx context.Context) (pipeline.HealthSummary, error)
}

// ItemService exposes read-only item operations returning API DTOs.
type ItemService struct {
	store ItemReader
}

// NewItemService constructs an ItemService around the provided reader.
func NewItemService(store ItemReader) *ItemService {
	if store == nil {
		return nil
	}
	return &ItemService{store: store}
}

// ParseStage normalizes a caller-supplied stage string. Callers apply this
// exactly once at the boundary; everything inside works with canonical stages.
func ParseStage(raw string) (stage.Stage, error) {
	return stage.Normalize(raw)
}

// Describe fetches a single item.
func (s *ItemService) Describe(ctx context.Context, id string) (*ItemView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := FromItem(item)
	return &view, nil
}

// List returns items filtered by stage.
func (s *ItemService) List(ctx context.Context, stages ...stage.Stage) ([]ItemView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, stages...)
	if err != nil {
		return nil, err
	}
	return FromItems(items), nil
}

// Page returns one page of items in the given stage.
func (s *ItemService) Page(ctx context.Context, st stage.Stage, page, pageSize int) (PageView, error) {
	if s == nil || s.store == nil {
		return PageView{}, nil
	}
	result, err := s.store.ListByStage(ctx, st, page, pageSize)
	if err != nil {
		return PageView{}, err
	}
	return FromPage(result), nil
}

// History returns the audit trail for one item, newest first.
func (s *ItemService) History(ctx context.Context, itemID string, limit int) ([]AuditView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	entries, err := s.store.History(ctx, itemID, limit)
	if err != nil {
		return nil, err
	}
	return FromAuditEntries(entries), nil
}

// Distribution returns per-stage item counts in canonical stage order.
func (s *ItemService) Distribution(ctx context.Context) ([]StageCount, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	distribution, err := s.store.StageDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return FromDistribution(distribution), nil
}

// Stuck returns items sitting in a processing stage beyond threshold.
func (s *ItemService) Stuck(ctx context.Context, threshold time.Duration) ([]ItemView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.StuckItems(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return FromItems(items), nil
}

// CheckExist partitions candidate ids into valid and invalid sets.
func (s *ItemService) CheckExist(ctx context.Context, ids []string) (ExistenceView, error) {
	if s == nil || s.store == nil {
		return ExistenceView{}, nil
	}
	check, err := s.store.CheckItemsExist(ctx, ids)
	if err != nil {
		return ExistenceView{}, err
	}
	return FromExistenceCheck(check), nil
}

// Health returns aggregate pipeline counts.
func (s *ItemService) Health(ctx context.Context) (HealthView, error) {
	if s == nil || s.store == nil {
		return HealthView{}, nil
	}
	health, err := s.store.Health(ctx)
	if err != nil {
		return HealthView{}, err
	}
	return FromHealth(health), nil
}
