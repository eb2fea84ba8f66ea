package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/SiteForge/internal/adapter/ws"
	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/port/broadcast"
	"github.com/Strob0t/SiteForge/internal/port/database"
	"github.com/Strob0t/SiteForge/internal/port/messagequeue"
)

// BOQService manages bill-of-quantities lines, rooms and per-unit stage
// tracking. The task engine reads this data; authorship lives here.
type BOQService struct {
	store database.Store
	queue messagequeue.Queue
	hub   broadcast.Broadcaster

	invalidator ViewInvalidator
	now         func() time.Time
}

// NewBOQService creates a new BOQService.
func NewBOQService(store database.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *BOQService {
	return &BOQService{
		store: store,
		queue: queue,
		hub:   hub,
		now:   time.Now,
	}
}

// SetInvalidator attaches the optional view cache invalidator.
func (s *BOQService) SetInvalidator(v ViewInvalidator) {
	s.invalidator = v
}

// ListItems returns all BOQ lines of a project.
func (s *BOQService) ListItems(ctx context.Context, projectID string) ([]boq.Item, error) {
	return s.store.ListBOQItems(ctx, projectID)
}

// GetItem returns one BOQ line.
func (s *BOQService) GetItem(ctx context.Context, id string) (*boq.Item, error) {
	return s.store.GetBOQItem(ctx, id)
}

// CreateItemRequest holds the fields for a new BOQ line.
type CreateItemRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Area     string `json:"area,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// CreateItem adds a BOQ line to a project.
func (s *BOQService) CreateItem(ctx context.Context, projectID string, req CreateItemRequest) (*boq.Item, error) {
	if req.Name == "" || req.Category == "" {
		return nil, fmt.Errorf("%w: name and category are required", domain.ErrValidation)
	}

	id := req.ID
	if id == "" {
		id = "boq-" + uuid.NewString()
	}

	now := s.now()
	item := boq.Item{
		ID:        id,
		ProjectID: projectID,
		Name:      req.Name,
		Category:  req.Category,
		Quantity:  req.Quantity,
		Area:      req.Area,
		Notes:     req.Notes,
		Status:    boq.DispatchPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBOQItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListRooms returns all rooms of a project.
func (s *BOQService) ListRooms(ctx context.Context, projectID string) ([]boq.Room, error) {
	return s.store.ListRooms(ctx, projectID)
}

// CreateRoom adds a room to a project.
func (s *BOQService) CreateRoom(ctx context.Context, projectID, name string) (*boq.Room, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", domain.ErrValidation)
	}

	room := boq.Room{ID: "room-" + uuid.NewString(), Name: name}
	if err := s.store.CreateRoom(ctx, projectID, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// EnsureUnits starts per-unit tracking on a line: one unit per effective
// quantity, numbered from 1. A line that already has units is returned
// unchanged. Once units exist the line-level stages are derived, never
// authored.
func (s *BOQService) EnsureUnits(ctx context.Context, itemID string) (*boq.Item, error) {
	item, err := s.store.GetBOQItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(item.Units) > 0 {
		return item, nil
	}

	now := s.now()
	n := item.EffectiveQuantity()
	item.Units = make([]boq.Unit, 0, n)
	for i := 1; i <= n; i++ {
		item.Units = append(item.Units, boq.Unit{
			UnitID:        "unit-" + uuid.NewString(),
			UnitNumber:    i,
			Stages:        item.Stages,
			LastUpdatedAt: now,
		})
	}
	item.UpdatedAt = now

	if err := s.store.UpdateBOQItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SetUnitStage flips one pipeline stage on one unit and recomputes the
// line's rollup. Units disagreeing with each other is expected mid-rollout.
func (s *BOQService) SetUnitStage(ctx context.Context, itemID, unitID string, stage boq.Stage, value bool, updatedBy string) (*boq.Item, error) {
	if !boq.ValidStage(stage) {
		return nil, fmt.Errorf("%w: unknown stage %q", domain.ErrValidation, stage)
	}

	item, err := s.store.GetBOQItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	found := false
	for i := range item.Units {
		if item.Units[i].UnitID != unitID {
			continue
		}
		item.Units[i].Stages = item.Units[i].Stages.Set(stage, value)
		item.Units[i].LastUpdatedAt = now
		item.Units[i].LastUpdatedBy = updatedBy
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("unit %s on item %s: %w", unitID, itemID, domain.ErrNotFound)
	}

	item.UpdatedAt = now
	if err := s.store.UpdateBOQItem(ctx, item); err != nil {
		return nil, err
	}

	s.afterUnitChange(ctx, item)
	return item, nil
}

// AllocateUnit assigns a unit to a room. Room allocation feeds the role
// categorizer's room derivation on the next generation sync.
func (s *BOQService) AllocateUnit(ctx context.Context, itemID, unitID, roomID string) (*boq.Item, error) {
	item, err := s.store.GetBOQItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	found := false
	for i := range item.Units {
		if item.Units[i].UnitID != unitID {
			continue
		}
		item.Units[i].RoomID = roomID
		item.Units[i].LastUpdatedAt = now
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("unit %s on item %s: %w", unitID, itemID, domain.ErrNotFound)
	}

	item.UpdatedAt = now
	if err := s.store.UpdateBOQItem(ctx, item); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateProject(ctx, item.ProjectID)
	}
	return item, nil
}

func (s *BOQService) afterUnitChange(ctx context.Context, item *boq.Item) {
	if s.invalidator != nil {
		s.invalidator.InvalidateProject(ctx, item.ProjectID)
	}

	rollup := boq.RollupFor(*item)
	if s.queue != nil {
		if data, err := json.Marshal(rollup); err == nil {
			if err := s.queue.Publish(ctx, messagequeue.SubjectBOQUnitStage, data); err != nil {
				slog.Error("publish boq.unit.stage failed", "item_id", item.ID, "error", err)
			}
		}
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventBOQRollup, ws.BOQRollupEvent{
			ItemID:     item.ID,
			ProjectID:  item.ProjectID,
			Bottleneck: rollup.Bottleneck,
			Complete:   rollup.Complete,
		})
	}
}
