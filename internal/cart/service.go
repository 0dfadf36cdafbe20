package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/ginzapet/storefront/pkg/logger"
)

// Service exposes cart mutations over the store.
type Service struct {
	store *Store
	logg  *logger.Logger
}

func NewService(store *Store, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &Service{store: store, logg: logg}, nil
}

// Items returns the current cart contents.
func (s *Service) Items(ctx context.Context) ([]LineItem, error) {
	return s.store.Load(ctx)
}

// Add appends the item and persists the cart. Adding a slug already present
// is rejected with a conflict; the stored cart is left untouched.
func (s *Service) Add(ctx context.Context, item LineItem) ([]LineItem, error) {
	if strings.TrimSpace(item.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	current, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range current {
		if existing.Slug == item.Slug {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already in cart")
		}
	}

	updated := append(current, item)
	if err := s.store.Save(ctx, updated); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithSlug(ctx, item.Slug), "added product to cart")
	}
	return updated, nil
}

// Remove filters the matching slug out and persists the result. Removing a
// slug that is not present is a no-op success.
func (s *Service) Remove(ctx context.Context, slug string) ([]LineItem, error) {
	current, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	updated := make([]LineItem, 0, len(current))
	for _, item := range current {
		if item.Slug != slug {
			updated = append(updated, item)
		}
	}
	if err := s.store.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
