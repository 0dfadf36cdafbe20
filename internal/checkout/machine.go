package checkout

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ginzapet/storefront/internal/cart"
	"github.com/ginzapet/storefront/internal/catalog"
	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/ginzapet/storefront/pkg/logger"
	"github.com/ginzapet/storefront/pkg/metrics"
)

// State names one step of the checkout flow.
type State string

const (
	StateBrowsing      State = "browsing"
	StateDraftEditing  State = "draft_editing"
	StateDraftValid    State = "draft_valid"
	StateAwaitingProof State = "awaiting_payment_proof"
	StateSubmitting    State = "submitting"
	StateCompleted     State = "completed"
)

type cartReconciler interface {
	Reconcile(ctx context.Context) ([]catalog.Product, []cart.LineItem, error)
}

type orderSubmitter interface {
	SubmitOrder(ctx context.Context, submission catalog.OrderSubmission) (*catalog.OrderReceipt, error)
}

// Quote is the payment-step snapshot: resolved products, the product ids that
// will be submitted, and the derived totals. It is recomputed on every entry
// to the payment step and never persisted.
type Quote struct {
	Products   []catalog.Product
	ProductIDs []int
	Totals     Totals
}

// Proof is the payment evidence the shopper attaches. Only presence is
// validated; content checks belong to the server.
type Proof struct {
	Filename string
	Content  io.Reader
}

// Confirmation carries the sole state of the success view.
type Confirmation struct {
	TrxID string
	Email string
}

// MachineParams wires the checkout state machine.
type MachineParams struct {
	Carts      *cart.Store
	Drafts     *DraftStore
	Reconciler cartReconciler
	Submitter  orderSubmitter
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
	Now        func() time.Time
}

// Machine drives the flow from "cart has items" to "paid order submitted".
// Every state entry re-checks the empty-cart guard; validation failures keep
// the machine where it is; only a fully successful submission clears local
// state.
type Machine struct {
	mu         sync.Mutex
	state      State
	carts      *cart.Store
	drafts     *DraftStore
	reconciler cartReconciler
	submitter  orderSubmitter
	logg       *logger.Logger
	metrics    *metrics.CheckoutMetrics
	now        func() time.Time
	quote      *Quote
}

func NewMachine(params MachineParams) (*Machine, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Drafts == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	if params.Submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		state:      StateBrowsing,
		carts:      params.Carts,
		drafts:     params.Drafts,
		reconciler: params.Reconciler,
		submitter:  params.Submitter,
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        now,
	}, nil
}

// State returns the current checkout state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Quote returns the payment-step snapshot, or nil before the payment step.
func (m *Machine) Quote() *Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quote
}

// ErrCartEmpty signals the hard redirect back to browsing.
var ErrCartEmpty = pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")

// Begin enters the order form. The stored draft is returned for prefill; when
// none exists the defaults are presented instead.
func (m *Machine) Begin(ctx context.Context) (*OrderDraft, error) {
	if err := m.guardCart(ctx); err != nil {
		return nil, err
	}

	draft, err := m.drafts.Load(ctx)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		defaulted := DefaultDraft(m.now())
		draft = &defaulted
	}

	m.transition(StateDraftEditing)
	return draft, nil
}

// SubmitDraft validates the order form as a whole record. Failures are
// reported per field and leave the machine editing; success persists the
// draft and advances.
func (m *Machine) SubmitDraft(ctx context.Context, draft OrderDraft) error {
	if err := m.guardCart(ctx); err != nil {
		return err
	}

	if fieldErrs := ValidateDraft(draft); fieldErrs != nil {
		m.transition(StateDraftEditing)
		return draftValidationError(fieldErrs)
	}

	if err := m.drafts.Save(ctx, draft); err != nil {
		return err
	}
	m.transition(StateDraftValid)
	return nil
}

// EnterPayment re-runs the cart guard, re-resolves the cart against the live
// catalog, and snapshots the product ids and totals that will be submitted.
func (m *Machine) EnterPayment(ctx context.Context) (*Quote, error) {
	if err := m.guardCart(ctx); err != nil {
		return nil, err
	}

	products, items, err := m.reconciler.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		// Reconciliation emptied the cart; the flow is no longer actionable.
		m.transition(StateBrowsing)
		return nil, ErrCartEmpty
	}

	ids := make([]int, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}

	quote := &Quote{
		Products:   products,
		ProductIDs: ids,
		Totals:     ComputeTotals(products),
	}

	m.mu.Lock()
	m.quote = quote
	m.mu.Unlock()
	m.transition(StateAwaitingProof)
	return quote, nil
}

// SubmitPayment validates the proof for presence, assembles the submission
// from the persisted draft and the payment-step snapshot, and posts it.
// Success clears the cart and the draft and completes the flow; any failure
// leaves all local state untouched so the shopper can retry.
func (m *Machine) SubmitPayment(ctx context.Context, proof Proof) (*Confirmation, error) {
	if proof.Content == nil || proof.Filename == "" {
		fieldErrs := FieldErrors{}
		fieldErrs.Add("proof", "is required")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment proof is required").WithDetails(fieldErrs)
	}

	m.mu.Lock()
	if m.state == StateSubmitting {
		m.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "submission already in flight")
	}
	if m.state != StateAwaitingProof || m.quote == nil {
		m.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment step not entered")
	}
	quote := m.quote
	m.state = StateSubmitting
	m.mu.Unlock()

	draft, err := m.drafts.Load(ctx)
	if err != nil || draft == nil {
		m.transition(StateAwaitingProof)
		if err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order draft missing")
	}

	receipt, err := m.submitter.SubmitOrder(ctx, catalog.OrderSubmission{
		ProofName:   proof.Filename,
		Proof:       proof.Content,
		Name:        draft.Name,
		Email:       draft.Email,
		Phone:       draft.Phone,
		Address:     draft.Address,
		City:        draft.City,
		PostCode:    draft.PostCode,
		StartedTime: draft.StartedTime,
		ScheduleAt:  draft.ScheduleAt,
		ProductIDs:  quote.ProductIDs,
	})
	if err != nil {
		m.metrics.IncSubmission("failure")
		m.transition(StateAwaitingProof)
		if m.logg != nil {
			m.logg.Error(ctx, "order submission failed", err)
		}
		return nil, err
	}

	// The server accepted; local state must read back empty before the
	// shopper sees the confirmation. A clear failure keeps the machine at the
	// payment step so the outcome is never half-applied locally.
	if err := m.carts.Clear(ctx); err != nil {
		m.transition(StateAwaitingProof)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart after submission")
	}
	if err := m.drafts.Clear(ctx); err != nil {
		m.transition(StateAwaitingProof)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear draft after submission")
	}

	m.metrics.IncSubmission("success")
	m.transition(StateCompleted)
	if m.logg != nil {
		m.logg.Info(m.logg.WithTrxID(ctx, receipt.OrderTrxID), "order submitted")
	}
	return &Confirmation{TrxID: receipt.OrderTrxID, Email: receipt.Email}, nil
}

// guardCart enforces the empty-cart redirect on every state entry.
func (m *Machine) guardCart(ctx context.Context) error {
	items, err := m.carts.Load(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		m.transition(StateBrowsing)
		return ErrCartEmpty
	}
	return nil
}

func (m *Machine) transition(next State) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	if next == StateBrowsing {
		m.quote = nil
	}
	m.mu.Unlock()
	if m.logg != nil && prev != next {
		m.logg.Debug(m.logg.WithState(context.Background(), string(next)), "checkout state changed")
	}
}
