package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ginzapet/storefront/pkg/localstore"
)

// LineItem is one product reference held in the shopper's cart. Quantity is
// always 1: repeat adds are rejected rather than incremented, and no edit
// path exists.
type LineItem struct {
	ProductID int    `json:"product_id"`
	Slug      string `json:"slug"`
	Quantity  int    `json:"quantity"`
}

// Store owns the durable cart document. It is the single source of truth for
// what is in the cart; resolved product lists are always derived from it.
type Store struct {
	state localstore.Store
}

func NewStore(state localstore.Store) (*Store, error) {
	if state == nil {
		return nil, fmt.Errorf("local state store required")
	}
	return &Store{state: state}, nil
}

// Load returns the stored line items. Missing or corrupt storage loads as an
// empty cart; it never fails the caller.
func (s *Store) Load(ctx context.Context) ([]LineItem, error) {
	raw, err := s.state.Load(ctx, localstore.KeyCart)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil
	}
	return items, nil
}

// Save fully replaces the stored cart.
func (s *Store) Save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.state.Save(ctx, localstore.KeyCart, raw); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

// Clear drops the cart document entirely.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.state.Clear(ctx, localstore.KeyCart); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
