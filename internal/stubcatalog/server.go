// Package stubcatalog is a local stand-in for the remote catalog API, used
// for development and end-to-end tests of the storefront client. It serves
// the same routes and envelopes as the real backend over a small seeded
// dataset and keeps submitted orders in memory.
package stubcatalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ginzapet/storefront/internal/catalog"
	"github.com/ginzapet/storefront/pkg/logger"
	"github.com/google/uuid"
)

// Server holds the stub's in-memory state.
type Server struct {
	mu         sync.RWMutex
	categories []catalog.Category
	products   map[string]catalog.Product
	orders     []catalog.OrderDetails
	nextOrder  int
	logg       *logger.Logger
}

// NewServer seeds the dataset.
func NewServer(logg *logger.Logger) *Server {
	categories := seedCategories()
	products := map[string]catalog.Product{}
	for _, category := range categories {
		for _, product := range category.Products {
			products[product.Slug] = product
		}
	}
	return &Server{
		categories: categories,
		products:   products,
		nextOrder:  1,
		logg:       logg,
	}
}

func (s *Server) category(slug string) (catalog.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, category := range s.categories {
		if category.Slug == slug {
			return category, true
		}
	}
	return catalog.Category{}, false
}

func (s *Server) product(slug string) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[slug]
	return product, ok
}

func (s *Server) listProducts(limit int, popularOnly bool) []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []catalog.Product{}
	for _, category := range s.categories {
		for _, product := range category.Products {
			if popularOnly && !product.IsPopular {
				continue
			}
			out = append(out, product)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Server) productsByID(ids []int) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := map[int]catalog.Product{}
	for _, product := range s.products {
		byID[product.ID] = product
	}
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown product id %d", id)
		}
		out = append(out, product)
	}
	return out, nil
}

// recordOrder stores a submitted transaction and returns its receipt.
func (s *Server) recordOrder(details catalog.OrderDetails) catalog.OrderReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	details.ID = s.nextOrder
	s.nextOrder++
	details.OrderTrxID = newTrxID()
	s.orders = append(s.orders, details)
	return catalog.OrderReceipt{OrderTrxID: details.OrderTrxID, Email: details.Email}
}

func (s *Server) findOrder(email, trxID string) (catalog.OrderDetails, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, order := range s.orders {
		if strings.EqualFold(order.Email, email) && order.OrderTrxID == trxID {
			return order, true
		}
	}
	return catalog.OrderDetails{}, false
}

func newTrxID() string {
	return "GNZ-" + strings.ToUpper(uuid.NewString()[:8])
}
