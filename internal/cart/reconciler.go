package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/ginzapet/storefront/internal/catalog"
	"github.com/ginzapet/storefront/pkg/logger"
	"github.com/ginzapet/storefront/pkg/metrics"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultMaxParallelResolves = 4

type productResolver interface {
	ProductBySlug(ctx context.Context, slug string) (*catalog.Product, error)
}

// Reconciler validates stored line items against the live catalog and prunes
// references that no longer resolve. A lookup that errors is treated the same
// as one that returns no product: the item is excluded from the rebuilt cart.
type Reconciler struct {
	store       *Store
	resolver    productResolver
	logg        *logger.Logger
	metrics     *metrics.CheckoutMetrics
	maxParallel int
}

func NewReconciler(store *Store, resolver productResolver, logg *logger.Logger, m *metrics.CheckoutMetrics, maxParallel int) (*Reconciler, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if maxParallel < 1 {
		maxParallel = defaultMaxParallelResolves
	}
	return &Reconciler{
		store:       store,
		resolver:    resolver,
		logg:        logg,
		metrics:     m,
		maxParallel: maxParallel,
	}, nil
}

// Reconcile resolves every stored line item, rewrites the store with the
// surviving items, and returns the resolved products alongside them. Lookups
// run concurrently; output order matches stored order with drops removed.
func (r *Reconciler) Reconcile(ctx context.Context) ([]catalog.Product, []LineItem, error) {
	items, err := r.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	resolved := make([]*catalog.Product, len(items))
	resolveErrs := make([]error, len(items))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.maxParallel)
	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			started := time.Now()
			product, err := r.resolver.ProductBySlug(groupCtx, item.Slug)
			r.metrics.ObserveResolve(resolveOutcome(product, err), time.Since(started))
			resolved[i] = product
			resolveErrs[i] = err
			return nil
		})
	}
	// Workers never return errors; drops are decided per slot below.
	_ = group.Wait()

	validProducts := make([]catalog.Product, 0, len(items))
	validItems := make([]LineItem, 0, len(items))
	var dropped error
	for i, item := range items {
		switch {
		case resolveErrs[i] != nil:
			r.metrics.IncReconcileDrop("resolve_failed")
			dropped = multierr.Append(dropped, fmt.Errorf("resolve %s: %w", item.Slug, resolveErrs[i]))
		case resolved[i] == nil:
			r.metrics.IncReconcileDrop("not_found")
			dropped = multierr.Append(dropped, fmt.Errorf("product %s no longer available", item.Slug))
		default:
			validProducts = append(validProducts, *resolved[i])
			validItems = append(validItems, item)
		}
	}

	if dropped != nil && r.logg != nil {
		r.logg.Warn(r.logg.WithField(ctx, "dropped", len(items)-len(validItems)), "pruned stale cart items: "+dropped.Error())
	}

	// Rewrite even when nothing was dropped so the stored document always
	// reflects the last reconciled pass.
	if err := r.store.Save(ctx, validItems); err != nil {
		return nil, nil, err
	}
	return validProducts, validItems, nil
}

func resolveOutcome(product *catalog.Product, err error) string {
	switch {
	case err != nil:
		return "error"
	case product == nil:
		return "miss"
	default:
		return "ok"
	}
}
