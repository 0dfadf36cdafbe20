package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ginzapet/storefront/pkg/localstore"
)

// OrderDraft is the shopper's partially-filled order form, persisted so the
// flow can be resumed after navigating away.
type OrderDraft struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	StartedTime string `json:"started_time" validate:"required,timeslot"`
	ScheduleAt  string `json:"schedule_at" validate:"required"`
	PostCode    string `json:"post_code" validate:"required"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required,city"`
}

// DraftStore owns the durable order draft document.
type DraftStore struct {
	state localstore.Store
}

func NewDraftStore(state localstore.Store) (*DraftStore, error) {
	if state == nil {
		return nil, fmt.Errorf("local state store required")
	}
	return &DraftStore{state: state}, nil
}

// Load returns the stored draft, or nil when none exists. Corrupt storage
// loads as no draft.
func (s *DraftStore) Load(ctx context.Context) (*OrderDraft, error) {
	raw, err := s.state.Load(ctx, localstore.KeyOrderDraft)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading order draft: %w", err)
	}
	var draft OrderDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, nil
	}
	return &draft, nil
}

// Save overwrites the stored draft.
func (s *DraftStore) Save(ctx context.Context, draft OrderDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encoding order draft: %w", err)
	}
	if err := s.state.Save(ctx, localstore.KeyOrderDraft, raw); err != nil {
		return fmt.Errorf("saving order draft: %w", err)
	}
	return nil
}

// Clear drops the stored draft.
func (s *DraftStore) Clear(ctx context.Context) error {
	if err := s.state.Clear(ctx, localstore.KeyOrderDraft); err != nil {
		return fmt.Errorf("clearing order draft: %w", err)
	}
	return nil
}

// ScheduleDateFormat is the wire format for schedule_at.
const ScheduleDateFormat = "2006-01-02"

// DefaultDraft returns the draft presented when none is stored yet: empty
// fields with the schedule date defaulted to the day after now.
func DefaultDraft(now time.Time) OrderDraft {
	return OrderDraft{
		ScheduleAt: now.AddDate(0, 0, 1).Format(ScheduleDateFormat),
	}
}
