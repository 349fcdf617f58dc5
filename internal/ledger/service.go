package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the payment ledger operations.
type Service interface {
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.HandoffPayment, *Summary, error)
	Summary(ctx context.Context, handoffID uuid.UUID) (*Summary, error)
	VerifyAgainstEntries(ctx context.Context, handoffID uuid.UUID) (*VerificationResult, error)
}

// RecordPaymentInput captures a single payment against a handoff.
type RecordPaymentInput struct {
	HandoffID    uuid.UUID
	AmountKobo   int64
	Currency     enums.Currency
	Purpose      enums.PaymentPurpose
	Note         *string
	RecordedBy   *uuid.UUID
	TotalDueKobo *int64
	Actor        handoffs.Actor
}

// Summary is the aggregate view of a handoff's ledger. Balance floors at
// zero; any overpayment is surfaced separately as credit.
type Summary struct {
	HandoffID     uuid.UUID      `json:"handoff_id"`
	Currency      enums.Currency `json:"currency"`
	TotalDueKobo  int64          `json:"total_due_kobo"`
	TotalPaidKobo int64          `json:"total_paid_kobo"`
	BalanceKobo   int64          `json:"balance_kobo"`
	CreditKobo    int64          `json:"credit_kobo,omitempty"`
}

// VerificationResult compares the cached summary with a recompute from the
// immutable payment rows.
type VerificationResult struct {
	HandoffID         uuid.UUID `json:"handoff_id"`
	Consistent        bool      `json:"consistent"`
	CachedTotalPaid   int64     `json:"cached_total_paid_kobo"`
	RecomputedTotal   int64     `json:"recomputed_total_paid_kobo"`
	CachedBalance     int64     `json:"cached_balance_kobo"`
	RecomputedBalance int64     `json:"recomputed_balance_kobo"`
	PaymentEntryCount int       `json:"payment_entry_count"`
}

type service struct {
	repo        Repository
	handoffRepo handoffs.Repository
	tx          txRunner
	outbox      outboxPublisher
}

// NewService wires the ledger service with its dependencies.
func NewService(repo Repository, handoffRepo handoffs.Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if handoffRepo == nil {
		return nil, fmt.Errorf("handoffs repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, handoffRepo: handoffRepo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.HandoffPayment, *Summary, error) {
	if input.HandoffID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	if input.AmountKobo <= 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if !input.Purpose.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment purpose %q", input.Purpose))
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyNGN
	}
	if !currency.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}
	if input.TotalDueKobo != nil && *input.TotalDueKobo <= 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "total due must be positive")
	}

	var payment *models.HandoffPayment
	var summary *Summary
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoffRepo := s.handoffRepo.WithTx(tx)

		handoff, err := handoffRepo.FindByID(ctx, input.HandoffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "handoff not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handoff")
		}
		if !handoffs.StatusAllows(handoff.Status, enums.ActionRecordPayment) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payments cannot be recorded in the current state")
		}

		fin, err := repo.FindFinancialsForUpdate(ctx, input.HandoffID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load financials")
		}

		totalDue, err := resolveTotalDue(fin, input.TotalDueKobo)
		if err != nil {
			return err
		}

		entry := &models.HandoffPayment{
			HandoffID:  input.HandoffID,
			AmountKobo: input.AmountKobo,
			Currency:   currency,
			Purpose:    input.Purpose,
			Note:       input.Note,
			RecordedBy: input.RecordedBy,
			PaidAt:     time.Now(),
		}
		if err := repo.CreatePayment(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append payment entry")
		}
		payment = entry

		totalPaid := input.AmountKobo
		if fin != nil {
			totalPaid += fin.TotalPaidKobo
		}
		balance := clampBalance(totalDue, totalPaid)

		if fin == nil {
			created := &models.HandoffFinancials{
				HandoffID:     input.HandoffID,
				Currency:      currency,
				TotalDueKobo:  totalDue,
				TotalPaidKobo: totalPaid,
				BalanceKobo:   balance,
			}
			if err := repo.CreateFinancials(ctx, created); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create financials")
			}
			fin = created
		} else {
			if err := repo.UpdateFinancials(ctx, input.HandoffID, map[string]any{
				"total_due_kobo":  totalDue,
				"total_paid_kobo": totalPaid,
				"balance_kobo":    balance,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update financials")
			}
			fin.TotalDueKobo = totalDue
			fin.TotalPaidKobo = totalPaid
			fin.BalanceKobo = balance
		}

		summary = summaryFromFinancials(input.HandoffID, fin)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRecorded,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   input.HandoffID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.Actor.UserID, Role: string(input.Actor.Role)},
			Data: payloads.PaymentRecordedEvent{
				HandoffID:  input.HandoffID,
				PaymentID:  entry.ID,
				AmountKobo: entry.AmountKobo,
				Purpose:    entry.Purpose,
				PaidAt:     entry.PaidAt,
			},
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, summary, nil
}

func (s *service) Summary(ctx context.Context, handoffID uuid.UUID) (*Summary, error) {
	if handoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	fin, err := s.repo.FindFinancials(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no ledger for handoff")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load financials")
	}
	return summaryFromFinancials(handoffID, fin), nil
}

func (s *service) VerifyAgainstEntries(ctx context.Context, handoffID uuid.UUID) (*VerificationResult, error) {
	if handoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	fin, err := s.repo.FindFinancials(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no ledger for handoff")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load financials")
	}
	payments, err := s.repo.ListPayments(ctx, handoffID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	var recomputed int64
	for _, p := range payments {
		recomputed += p.AmountKobo
	}
	recomputedBalance := clampBalance(fin.TotalDueKobo, recomputed)

	return &VerificationResult{
		HandoffID:         handoffID,
		Consistent:        recomputed == fin.TotalPaidKobo && recomputedBalance == fin.BalanceKobo,
		CachedTotalPaid:   fin.TotalPaidKobo,
		RecomputedTotal:   recomputed,
		CachedBalance:     fin.BalanceKobo,
		RecomputedBalance: recomputedBalance,
		PaymentEntryCount: len(payments),
	}, nil
}

// resolveTotalDue enforces the set-once-then-only-increase rule for the
// reference due amount. Overpayment is legal; it shows up as credit, not a
// negative balance.
func resolveTotalDue(fin *models.HandoffFinancials, requested *int64) (int64, error) {
	var current int64
	if fin != nil {
		current = fin.TotalDueKobo
	}

	if requested == nil {
		if current == 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "total due required on first payment")
		}
		return current, nil
	}

	if *requested < current {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "total due may only increase")
	}
	return *requested, nil
}

func clampBalance(totalDue, totalPaid int64) int64 {
	balance := totalDue - totalPaid
	if balance < 0 {
		return 0
	}
	return balance
}

func summaryFromFinancials(handoffID uuid.UUID, fin *models.HandoffFinancials) *Summary {
	summary := &Summary{
		HandoffID:     handoffID,
		Currency:      fin.Currency,
		TotalDueKobo:  fin.TotalDueKobo,
		TotalPaidKobo: fin.TotalPaidKobo,
		BalanceKobo:   fin.BalanceKobo,
	}
	if over := fin.TotalPaidKobo - fin.TotalDueKobo; over > 0 && fin.TotalDueKobo > 0 {
		summary.CreditKobo = over
	}
	return summary
}
