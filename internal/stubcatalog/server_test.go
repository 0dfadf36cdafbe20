package stubcatalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ginzapet/storefront/internal/catalog"
	"github.com/ginzapet/storefront/pkg/config"
	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
)

// The stub is exercised through the real catalog client so routes, envelopes,
// and field names stay in lockstep with what the storefront actually sends.
func newStubClient(t *testing.T) *catalog.Client {
	t.Helper()
	router := NewRouter(NewServer(nil), nil, nil)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client, err := catalog.NewClient(config.CatalogConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewServer(nil), nil, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestBrowseSeededCatalog(t *testing.T) {
	t.Parallel()

	client := newStubClient(t)
	ctx := context.Background()

	categories, err := client.Categories(ctx)
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("expected 3 seeded categories, got %d", len(categories))
	}

	grooming, err := client.CategoryBySlug(ctx, "grooming")
	if err != nil {
		t.Fatalf("category lookup failed: %v", err)
	}
	if grooming.ProductsCount != 2 || len(grooming.Products) != 2 {
		t.Fatalf("unexpected grooming category %+v", grooming)
	}
	if len(grooming.PopularProducts) != 1 || grooming.PopularProducts[0].Slug != "full-grooming-treatment" {
		t.Fatalf("unexpected popular products %+v", grooming.PopularProducts)
	}

	if _, err := client.CategoryBySlug(ctx, "aquatics"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found for unknown category, got %v", err)
	}
}

func TestProductListingFilters(t *testing.T) {
	t.Parallel()

	client := newStubClient(t)
	ctx := context.Background()

	all, err := client.Products(ctx, catalog.ProductQuery{})
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 seeded products, got %d", len(all))
	}

	popular, err := client.Products(ctx, catalog.ProductQuery{PopularOnly: true})
	if err != nil {
		t.Fatalf("popular products failed: %v", err)
	}
	if len(popular) != 3 {
		t.Fatalf("expected 3 popular products, got %d", len(popular))
	}
	for _, product := range popular {
		if !product.IsPopular {
			t.Fatalf("non-popular product in filtered list: %+v", product)
		}
	}

	limited, err := client.Products(ctx, catalog.ProductQuery{Limit: 2})
	if err != nil {
		t.Fatalf("limited products failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 products with limit, got %d", len(limited))
	}
}

func TestProductLookup(t *testing.T) {
	t.Parallel()

	client := newStubClient(t)
	ctx := context.Background()

	product, err := client.ProductBySlug(ctx, "home-vet-visit")
	if err != nil {
		t.Fatalf("product lookup failed: %v", err)
	}
	if product == nil || product.ID != 3 || product.Price != 250000 {
		t.Fatalf("unexpected product %+v", product)
	}
	if product.Category == nil || product.Category.Slug != "health-care" {
		t.Fatalf("expected category back-reference, got %+v", product.Category)
	}

	if _, err := client.ProductBySlug(ctx, "goldfish-bowl"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestOrderTransactionThenBookingLookup(t *testing.T) {
	t.Parallel()

	client := newStubClient(t)
	ctx := context.Background()

	receipt, err := client.SubmitOrder(ctx, catalog.OrderSubmission{
		ProofName:   "proof.jpg",
		Proof:       strings.NewReader("img-bytes"),
		Name:        "Sari Wijaya",
		Email:       "sari@example.com",
		Phone:       "+628123456789",
		Address:     "Jl. Sudirman 12",
		City:        "Jakarta",
		PostCode:    "12950",
		StartedTime: "09:00",
		ScheduleAt:  "2026-09-01",
		ProductIDs:  []int{2, 3},
	})
	if err != nil {
		t.Fatalf("submit order failed: %v", err)
	}
	if !strings.HasPrefix(receipt.OrderTrxID, "GNZ-") {
		t.Fatalf("unexpected trx id %q", receipt.OrderTrxID)
	}
	if receipt.Email != "sari@example.com" {
		t.Fatalf("unexpected receipt email %q", receipt.Email)
	}

	details, err := client.CheckBooking(ctx, "sari@example.com", receipt.OrderTrxID)
	if err != nil {
		t.Fatalf("booking lookup failed: %v", err)
	}
	// 100000 + 250000, taxed at 11%.
	if details.SubTotal != 350000 || details.TotalTaxAmount != 38500 || details.TotalAmount != 388500 {
		t.Fatalf("unexpected totals %+v", details)
	}
	if details.IsPaid {
		t.Fatal("fresh order should not be marked paid")
	}
	if len(details.Transactions) != 2 || details.Transactions[0].ProductID != 2 || details.Transactions[1].ProductID != 3 {
		t.Fatalf("unexpected transaction lines %+v", details.Transactions)
	}

	// Lookup is case-insensitive on email but strict on trx id.
	if _, err := client.CheckBooking(ctx, "SARI@EXAMPLE.COM", receipt.OrderTrxID); err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	if _, err := client.CheckBooking(ctx, "sari@example.com", "GNZ-NOPE0000"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found for unknown trx id, got %v", err)
	}
}

func TestOrderTransactionRejectsUnknownProduct(t *testing.T) {
	t.Parallel()

	client := newStubClient(t)
	_, err := client.SubmitOrder(context.Background(), catalog.OrderSubmission{
		ProofName:   "proof.jpg",
		Proof:       strings.NewReader("img"),
		Name:        "Sari Wijaya",
		Email:       "sari@example.com",
		Phone:       "+628123456789",
		Address:     "Jl. Sudirman 12",
		City:        "Jakarta",
		PostCode:    "12950",
		StartedTime: "09:00",
		ScheduleAt:  "2026-09-01",
		ProductIDs:  []int{999},
	})
	if err == nil {
		t.Fatal("expected unknown product to be rejected")
	}
}

func TestOrderTransactionRequiresProofAndFields(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewServer(nil), nil, nil)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// A form without the proof part must fail before anything is recorded.
	req := httptest.NewRequest(http.MethodPost, "/order-transaction", strings.NewReader("--x--"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without proof, got %d", rec.Code)
	}
}

func TestCollectProductIDs(t *testing.T) {
	t.Parallel()

	ids, err := collectProductIDs(map[string][]string{
		"product_ids[0]": {"2"},
		"product_ids[1]": {"6"},
		"name":           {"ignored"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 6 {
		t.Fatalf("unexpected ids %v", ids)
	}

	// A gap in the index sequence is a malformed submission.
	if _, err := collectProductIDs(map[string][]string{
		"product_ids[0]": {"2"},
		"product_ids[2]": {"6"},
	}); err == nil {
		t.Fatal("expected error for index gap")
	}

	if _, err := collectProductIDs(map[string][]string{
		"product_ids[0]": {"not-a-number"},
	}); err == nil {
		t.Fatal("expected error for non-numeric id")
	}

	ids, err = collectProductIDs(map[string][]string{"name": {"no ids"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}
