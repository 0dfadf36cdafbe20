package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ginzapet/storefront/internal/cart"
	"github.com/ginzapet/storefront/internal/catalog"
	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/ginzapet/storefront/pkg/localstore"
	"github.com/shopspring/decimal"
)

type stubReconciler struct {
	products []catalog.Product
	items    []cart.LineItem
	err      error
}

func (s *stubReconciler) Reconcile(context.Context) ([]catalog.Product, []cart.LineItem, error) {
	return s.products, s.items, s.err
}

type stubSubmitter struct {
	receipt    *catalog.OrderReceipt
	err        error
	submission catalog.OrderSubmission
	calls      int
}

func (s *stubSubmitter) SubmitOrder(_ context.Context, submission catalog.OrderSubmission) (*catalog.OrderReceipt, error) {
	s.calls++
	s.submission = submission
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

type machineFixture struct {
	machine   *Machine
	carts     *cart.Store
	drafts    *DraftStore
	submitter *stubSubmitter
}

func newFixture(t *testing.T, cartItems []cart.LineItem, reconciler *stubReconciler) *machineFixture {
	t.Helper()
	ctx := context.Background()

	carts, err := cart.NewStore(localstore.NewMemory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cartItems) > 0 {
		if err := carts.Save(ctx, cartItems); err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}
	drafts, err := NewDraftStore(localstore.NewMemory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reconciler == nil {
		reconciler = &stubReconciler{}
	}
	submitter := &stubSubmitter{receipt: &catalog.OrderReceipt{OrderTrxID: "GNZ-AB12CD34", Email: "sari@example.com"}}

	machine, err := NewMachine(MachineParams{
		Carts:      carts,
		Drafts:     drafts,
		Reconciler: reconciler,
		Submitter:  submitter,
		Now: func() time.Time {
			return time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &machineFixture{machine: machine, carts: carts, drafts: drafts, submitter: submitter}
}

func seedLineItems() []cart.LineItem {
	return []cart.LineItem{
		{ProductID: 2, Slug: "fur-trim-brush", Quantity: 1},
		{ProductID: 6, Slug: "nail-clipping", Quantity: 1},
	}
}

func seedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 2, Slug: "fur-trim-brush", Price: 100000},
		{ID: 6, Slug: "nail-clipping", Price: 50000},
	}
}

func (f *machineFixture) advanceToAwaitingProof(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.machine.Begin(ctx); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := f.machine.SubmitDraft(ctx, validDraft()); err != nil {
		t.Fatalf("submit draft failed: %v", err)
	}
	if _, err := f.machine.EnterPayment(ctx); err != nil {
		t.Fatalf("enter payment failed: %v", err)
	}
}

func TestBeginEmptyCartRedirectsToBrowsing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	_, err := f.machine.Begin(context.Background())
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
	if f.machine.State() != StateBrowsing {
		t.Fatalf("expected browsing state, got %q", f.machine.State())
	}
}

func TestBeginDefaultsScheduleToTomorrow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), nil)
	draft, err := f.machine.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if draft.ScheduleAt != "2026-08-29" {
		t.Fatalf("expected tomorrow as default schedule, got %q", draft.ScheduleAt)
	}
	if f.machine.State() != StateDraftEditing {
		t.Fatalf("expected draft_editing, got %q", f.machine.State())
	}
}

func TestBeginPrefillsStoredDraft(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), nil)
	stored := validDraft()
	if err := f.drafts.Save(context.Background(), stored); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	draft, err := f.machine.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if *draft != stored {
		t.Fatalf("expected stored draft prefill, got %+v", draft)
	}
}

func TestSubmitDraftValidationKeepsEditing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), nil)
	ctx := context.Background()
	if _, err := f.machine.Begin(ctx); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	bad := validDraft()
	bad.Email = "nope"
	bad.City = "Atlantis"
	err := f.machine.SubmitDraft(ctx, bad)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fieldErrs, ok := pkgerrors.As(err).Details().(FieldErrors)
	if !ok {
		t.Fatalf("expected FieldErrors details, got %T", pkgerrors.As(err).Details())
	}
	if len(fieldErrs["email"]) == 0 || len(fieldErrs["city"]) == 0 {
		t.Fatalf("expected email and city errors, got %v", fieldErrs)
	}
	if f.machine.State() != StateDraftEditing {
		t.Fatalf("expected to stay editing, got %q", f.machine.State())
	}

	// The invalid draft must not have been persisted.
	stored, err := f.drafts.Load(ctx)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	if stored != nil {
		t.Fatalf("invalid draft was persisted: %+v", stored)
	}
}

func TestSubmitDraftPersistsAndAdvances(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), nil)
	ctx := context.Background()
	if _, err := f.machine.Begin(ctx); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := f.machine.SubmitDraft(ctx, validDraft()); err != nil {
		t.Fatalf("submit draft failed: %v", err)
	}
	if f.machine.State() != StateDraftValid {
		t.Fatalf("expected draft_valid, got %q", f.machine.State())
	}
	stored, err := f.drafts.Load(ctx)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	if stored == nil || *stored != validDraft() {
		t.Fatalf("draft not persisted: %+v", stored)
	}
}

func TestEnterPaymentBuildsQuote(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), &stubReconciler{products: seedProducts(), items: seedLineItems()})
	ctx := context.Background()
	if _, err := f.machine.Begin(ctx); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := f.machine.SubmitDraft(ctx, validDraft()); err != nil {
		t.Fatalf("submit draft failed: %v", err)
	}

	quote, err := f.machine.EnterPayment(ctx)
	if err != nil {
		t.Fatalf("enter payment failed: %v", err)
	}
	if f.machine.State() != StateAwaitingProof {
		t.Fatalf("expected awaiting_payment_proof, got %q", f.machine.State())
	}
	if len(quote.ProductIDs) != 2 || quote.ProductIDs[0] != 2 || quote.ProductIDs[1] != 6 {
		t.Fatalf("unexpected product ids %v", quote.ProductIDs)
	}
	if !quote.Totals.Subtotal.Equal(decimal.NewFromInt(150000)) ||
		!quote.Totals.Tax.Equal(decimal.NewFromInt(16500)) ||
		!quote.Totals.Total.Equal(decimal.NewFromInt(166500)) {
		t.Fatalf("unexpected totals %+v", quote.Totals)
	}
}

func TestEnterPaymentEmptyAfterReconcileRedirects(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), &stubReconciler{})
	ctx := context.Background()
	if _, err := f.machine.Begin(ctx); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := f.machine.SubmitDraft(ctx, validDraft()); err != nil {
		t.Fatalf("submit draft failed: %v", err)
	}

	_, err := f.machine.EnterPayment(ctx)
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
	if f.machine.State() != StateBrowsing {
		t.Fatalf("expected browsing, got %q", f.machine.State())
	}
	if f.machine.Quote() != nil {
		t.Fatal("expected quote dropped on redirect")
	}
}

func TestSubmitPaymentRequiresProof(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), &stubReconciler{products: seedProducts(), items: seedLineItems()})
	f.advanceToAwaitingProof(t)

	_, err := f.machine.SubmitPayment(context.Background(), Proof{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fieldErrs, ok := pkgerrors.As(err).Details().(FieldErrors)
	if !ok || len(fieldErrs["proof"]) == 0 {
		t.Fatalf("expected proof field error, got %v", pkgerrors.As(err).Details())
	}
	if f.submitter.calls != 0 {
		t.Fatalf("submitter must not be called without proof, got %d calls", f.submitter.calls)
	}
}

func TestSubmitPaymentBeforePaymentStep(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), nil)
	proof := Proof{Filename: "proof.jpg", Content: strings.NewReader("img")}
	if _, err := f.machine.SubmitPayment(context.Background(), proof); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSubmitPaymentSuccessClearsStateAndCompletes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), &stubReconciler{products: seedProducts(), items: seedLineItems()})
	f.advanceToAwaitingProof(t)
	ctx := context.Background()

	confirmation, err := f.machine.SubmitPayment(ctx, Proof{Filename: "proof.jpg", Content: strings.NewReader("img")})
	if err != nil {
		t.Fatalf("submit payment failed: %v", err)
	}
	if confirmation.TrxID != "GNZ-AB12CD34" || confirmation.Email != "sari@example.com" {
		t.Fatalf("unexpected confirmation %+v", confirmation)
	}
	if f.machine.State() != StateCompleted {
		t.Fatalf("expected completed, got %q", f.machine.State())
	}

	// The submission carries the persisted draft and the snapshotted ids.
	got := f.submitter.submission
	if got.Email != "sari@example.com" || got.City != "Jakarta" || got.StartedTime != "09:00" {
		t.Fatalf("unexpected submission fields %+v", got)
	}
	if len(got.ProductIDs) != 2 || got.ProductIDs[0] != 2 || got.ProductIDs[1] != 6 {
		t.Fatalf("unexpected submitted ids %v", got.ProductIDs)
	}

	items, err := f.carts.Load(ctx)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected cart cleared, got %+v", items)
	}
	draft, err := f.drafts.Load(ctx)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	if draft != nil {
		t.Fatalf("expected draft cleared, got %+v", draft)
	}
}

func TestSubmitPaymentFailureLeavesStateForRetry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, seedLineItems(), &stubReconciler{products: seedProducts(), items: seedLineItems()})
	f.advanceToAwaitingProof(t)
	f.submitter.err = pkgerrors.New(pkgerrors.CodeDependency, "catalog unavailable")
	ctx := context.Background()

	_, err := f.machine.SubmitPayment(ctx, Proof{Filename: "proof.jpg", Content: strings.NewReader("img")})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if f.machine.State() != StateAwaitingProof {
		t.Fatalf("expected awaiting_payment_proof for retry, got %q", f.machine.State())
	}

	items, err := f.carts.Load(ctx)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("cart must survive a failed submission, got %+v", items)
	}
	draft, err := f.drafts.Load(ctx)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	if draft == nil {
		t.Fatal("draft must survive a failed submission")
	}

	// A retry with the same quote succeeds.
	f.submitter.err = nil
	confirmation, err := f.machine.SubmitPayment(ctx, Proof{Filename: "proof.jpg", Content: strings.NewReader("img")})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if confirmation == nil || f.machine.State() != StateCompleted {
		t.Fatalf("expected completed retry, state %q", f.machine.State())
	}
}
