// Package checkout drives the cart, shipping, payment and review wizard and
// the final order commit: shipping and payment snapshots are saved
// best-effort, then every cart line is appended to the checkout history as
// its own row, sequentially, with per-item failures collected rather than
// propagated. The order is considered placed even when recording fails;
// only a missing identity aborts the flow.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/bookshelf-backend/internal/domain/cart"
	"github.com/xenking/bookshelf-backend/internal/domain/history"
	"github.com/xenking/bookshelf-backend/internal/domain/payment"
	"github.com/xenking/bookshelf-backend/internal/domain/shipping"
)

// ErrUnauthenticated is returned when PlaceOrder is invoked without a
// signed-in identity. This is the only hard failure of the flow.
var ErrUnauthenticated = fmt.Errorf("not authenticated")

// PreconditionError is returned when PlaceOrder is invoked before the
// session has reached the review step.
type PreconditionError struct {
	Step Step
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("place order requires the review step, session is at %s", e.Step)
}

// Identity is the authenticated customer placing the order.
type Identity struct {
	Email string
	Name  string
}

// PaymentVault persists the masked card snapshot. The production
// implementation is the billing cookie writer.
type PaymentVault interface {
	SaveCard(ctx context.Context, card payment.MaskedCard) error
}

// SnapshotStore keeps a copy of the cart for the confirmation view, which
// renders after the live cart has already been cleared.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, email string, items []cart.Item) error
}

// ItemFailure records one cart line whose history append failed.
type ItemFailure struct {
	BookID string
	Err    error
}

// Report summarizes the per-item submission loop. It is always returned to
// the caller so partial failures stay observable instead of silently lost.
type Report struct {
	Attempted int
	Recorded  int
	Skipped   int
	Failures  []ItemFailure
}

// NothingRecorded reports whether items existed but none were persisted.
// Callers surface this as a non-fatal "processed but not recorded" warning.
func (r *Report) NothingRecorded() bool {
	return r.Attempted > 0 && r.Recorded == 0
}

// Service performs the order commit sequence.
type Service struct {
	shipping  shipping.Repository
	payments  PaymentVault
	history   history.Repository
	snapshots SnapshotStore
	now       func() time.Time
	lg        *zap.Logger
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	shippingRepo shipping.Repository,
	payments PaymentVault,
	historyRepo history.Repository,
	snapshots SnapshotStore,
	lg *zap.Logger,
) *Service {
	return &Service{
		shipping:  shippingRepo,
		payments:  payments,
		history:   historyRepo,
		snapshots: snapshots,
		now:       time.Now,
		lg:        lg,
	}
}

// PlaceOrder commits the order. Preconditions: ident must be present
// (ErrUnauthenticated otherwise, with the cart left untouched) and the
// session must be at the review step (PreconditionError otherwise).
//
// Profile saves and per-item history appends are deliberately lenient:
// failures are logged and collected into the Report, and the order is still
// considered placed. The cart is cleared regardless of how many rows were
// recorded. This asymmetry reproduces the observed contract; see the report
// for what actually landed.
func (s *Service) PlaceOrder(
	ctx context.Context,
	sess *Session,
	ident *Identity,
	crt *cart.Cart,
	ship shipping.Info,
	card payment.Card,
) (*Report, error) {
	if ident == nil || ident.Email == "" {
		return nil, ErrUnauthenticated
	}
	if sess.Step() != StepReview {
		return nil, &PreconditionError{Step: sess.Step()}
	}

	// Snapshot saves are best-effort: a profile that fails to persist must
	// not block the purchase.
	ship.Email = ident.Email
	if err := s.shipping.Upsert(ctx, ship); err != nil {
		s.lg.Warn("shipping snapshot not saved",
			zap.String("email", ident.Email),
			zap.Error(err),
		)
	}

	card.Email = ident.Email
	if err := s.payments.SaveCard(ctx, card.Masked()); err != nil {
		s.lg.Warn("payment snapshot not saved",
			zap.String("email", ident.Email),
			zap.Error(err),
		)
	}

	items := crt.Items()
	if err := s.snapshots.SaveSnapshot(ctx, ident.Email, items); err != nil {
		s.lg.Warn("order snapshot not saved",
			zap.String("email", ident.Email),
			zap.Error(err),
		)
	}

	// One history row per distinct line, submitted sequentially so entries
	// land in cart order and never race each other.
	report := &Report{}
	checkoutAt := s.now()
	for _, it := range items {
		if it.ID == "" {
			report.Skipped++
			continue
		}
		report.Attempted++

		entry := &history.Entry{
			Email:      ident.Email,
			BookISBN:   it.ID,
			TotalPrice: it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			Qty:        it.Quantity,
			CheckoutAt: checkoutAt,
		}
		if err := s.history.Append(ctx, entry); err != nil {
			s.lg.Warn("history row not recorded",
				zap.String("email", ident.Email),
				zap.String("book_isbn", it.ID),
				zap.Error(err),
			)
			report.Failures = append(report.Failures, ItemFailure{BookID: it.ID, Err: err})
			continue
		}
		report.Recorded++
	}

	if report.NothingRecorded() {
		s.lg.Warn("order processed but no history rows recorded",
			zap.String("email", ident.Email),
			zap.Int("attempted", report.Attempted),
		)
	}

	crt.Clear()
	return report, nil
}
