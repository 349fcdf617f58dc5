package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/internal/conversations"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/ledger"
	"github.com/linescout/linescout-backend/internal/reorders"
	dbpkg "github.com/linescout/linescout-backend/pkg/db"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
	"github.com/linescout/linescout-backend/pkg/paystack"
	"github.com/linescout/linescout-backend/pkg/token"
)

const paystackRefTokenConstraint = "payment_tokens_paystack_ref_key"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type transactionVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
}

type reorderCreator interface {
	CreateReorder(ctx context.Context, input reorders.CreateReorderInput) (*reorders.ReorderResult, error)
}

// Notifier delivers post-commit side effects for a freshly opened handoff.
// Delivery failures never fail the verify call.
type Notifier interface {
	HandoffOpened(ctx context.Context, handoff *models.Handoff) error
}

// VerifyInput is the authenticated customer's verify request. Purpose is the
// client's declared intent; transaction metadata wins when the two disagree.
type VerifyInput struct {
	UserID    uuid.UUID
	Reference string
	Purpose   enums.PaymentPurpose
}

// VerifyResult reports what the verified transaction produced.
type VerifyResult struct {
	Token            *models.PaymentToken `json:"token"`
	HandoffID        *uuid.UUID           `json:"handoff_id,omitempty"`
	ReorderID        *uuid.UUID           `json:"reorder_id,omitempty"`
	AlreadyProcessed bool                 `json:"already_processed"`
}

// Service defines payment verification operations.
type Service interface {
	Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error)
}

type service struct {
	repo             Repository
	conversationRepo conversations.Repository
	handoffRepo      handoffs.Repository
	ledgerRepo       ledger.Repository
	reorderSvc       reorderCreator
	verifier         transactionVerifier
	tx               txRunner
	outbox           outboxPublisher
	notifier         Notifier
	logger           *logger.Logger
}

// NewService wires the verify flow. The notifier is optional.
func NewService(
	repo Repository,
	conversationRepo conversations.Repository,
	handoffRepo handoffs.Repository,
	ledgerRepo ledger.Repository,
	reorderSvc reorderCreator,
	verifier transactionVerifier,
	tx txRunner,
	outboxSvc outboxPublisher,
	notifier Notifier,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment token repository required")
	}
	if conversationRepo == nil {
		return nil, fmt.Errorf("conversations repository required")
	}
	if handoffRepo == nil {
		return nil, fmt.Errorf("handoffs repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if reorderSvc == nil {
		return nil, fmt.Errorf("reorder service required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("transaction verifier required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:             repo,
		conversationRepo: conversationRepo,
		handoffRepo:      handoffRepo,
		ledgerRepo:       ledgerRepo,
		reorderSvc:       reorderSvc,
		verifier:         verifier,
		tx:               tx,
		outbox:           outboxSvc,
		notifier:         notifier,
		logger:           logg,
	}, nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}

	if existing, err := s.repo.FindByPaystackRef(ctx, reference); err == nil {
		return &VerifyResult{
			Token:            existing,
			HandoffID:        existing.HandoffID,
			AlreadyProcessed: true,
		}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check payment reference")
	}

	verified, err := s.verifier.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !verified.IsSuccessful() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction did not settle").WithDetails(map[string]any{
			"tx_status": verified.Status,
		})
	}
	if verified.AmountKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction amount is not positive")
	}

	purpose := resolvePurpose(verified.Metadata, input.Purpose)

	if sourceID, ok := reorderSource(verified.Metadata); ok {
		return s.verifyReorder(ctx, input.UserID, reference, verified, sourceID, purpose)
	}
	return s.verifySourcing(ctx, input.UserID, reference, verified, purpose)
}

// verifySourcing opens a fresh handoff from a verified upfront payment.
func (s *service) verifySourcing(ctx context.Context, userID uuid.UUID, reference string, verified *paystack.VerifyResponse, purpose enums.PaymentPurpose) (*VerifyResult, error) {
	result := &VerifyResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		conversationRepo := s.conversationRepo.WithTx(tx)
		handoffRepo := s.handoffRepo.WithTx(tx)
		ledgerRepo := s.ledgerRepo.WithTx(tx)

		brief := metadataString(verified.Metadata, "brief")
		conversation := &models.Conversation{
			UserID:  userID,
			Channel: "app",
			Brief:   brief,
		}
		if _, err := conversationRepo.Create(ctx, conversation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversation")
		}

		handoffToken, err := token.New("ho")
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate handoff token")
		}
		handoff := &models.Handoff{
			Token:            handoffToken,
			Type:             enums.HandoffTypeSourcing,
			Mode:             enums.HandoffModePaidHuman,
			Status:           enums.HandoffStatusPending,
			CustomerName:     customerName(verified.Customer),
			CustomerEmail:    verified.Customer.Email,
			CustomerWhatsapp: optional(verified.Customer.Phone),
			Context:          brief,
			ConversationID:   &conversation.ID,
		}
		if _, err := handoffRepo.Create(ctx, handoff); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create handoff")
		}
		if err := conversationRepo.Update(ctx, conversation.ID, map[string]any{"handoff_id": handoff.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link conversation")
		}

		if err := s.seedLedger(ctx, ledgerRepo, handoff.ID, verified.AmountKobo, purpose); err != nil {
			return err
		}

		paymentToken, err := s.newToken(userID, reference, verified, purpose, &handoff.ID)
		if err != nil {
			return err
		}
		if _, err := repo.Create(ctx, paymentToken); err != nil {
			if dbpkg.IsUniqueViolation(err, paystackRefTokenConstraint) {
				return errDuplicateReference
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment token")
		}

		result.Token = paymentToken
		result.HandoffID = &handoff.ID

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventHandoffCreated,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   handoff.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.SystemRoleCustomer)},
			Data: payloads.HandoffCreatedEvent{
				HandoffID:    handoff.ID,
				Token:        handoff.Token,
				Type:         handoff.Type,
				Mode:         handoff.Mode,
				CustomerName: handoff.CustomerName,
			},
		})
	})
	if errors.Is(err, errDuplicateReference) {
		return s.existingResult(ctx, reference)
	}
	if err != nil {
		return nil, err
	}

	s.notifyOpened(ctx, result.HandoffID)
	return result, nil
}

// verifyReorder delegates row creation to the reorder linker, which is
// idempotent on the same reference, then records the payment token.
func (s *service) verifyReorder(ctx context.Context, userID uuid.UUID, reference string, verified *paystack.VerifyResponse, sourceID uuid.UUID, purpose enums.PaymentPurpose) (*VerifyResult, error) {
	reorderResult, err := s.reorderSvc.CreateReorder(ctx, reorders.CreateReorderInput{
		UserID:          userID,
		SourceHandoffID: sourceID,
		PaystackRef:     reference,
		AmountKobo:      verified.AmountKobo,
		UserNote:        metadataString(verified.Metadata, "note"),
	})
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		ReorderID:        &reorderResult.Reorder.ID,
		HandoffID:        &reorderResult.Reorder.NewHandoffID,
		AlreadyProcessed: reorderResult.AlreadyProcessed,
	}

	paymentToken, err := s.newToken(userID, reference, verified, purpose, &reorderResult.Reorder.NewHandoffID)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, paymentToken)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, paystackRefTokenConstraint) {
			existing, lookupErr := s.repo.FindByPaystackRef(ctx, reference)
			if lookupErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "load payment token")
			}
			result.Token = existing
			result.AlreadyProcessed = true
			return result, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment token")
	}
	result.Token = created

	if !result.AlreadyProcessed {
		s.notifyOpened(ctx, result.HandoffID)
	}
	return result, nil
}

var errDuplicateReference = errors.New("duplicate payment reference")

func (s *service) existingResult(ctx context.Context, reference string) (*VerifyResult, error) {
	existing, err := s.repo.FindByPaystackRef(ctx, reference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment token")
	}
	return &VerifyResult{
		Token:            existing,
		HandoffID:        existing.HandoffID,
		AlreadyProcessed: true,
	}, nil
}

func (s *service) newToken(userID uuid.UUID, reference string, verified *paystack.VerifyResponse, purpose enums.PaymentPurpose, handoffID *uuid.UUID) (*models.PaymentToken, error) {
	value, err := token.New("pt")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate payment token")
	}
	currency := enums.Currency(strings.ToUpper(verified.Currency))
	if !currency.IsValid() {
		currency = enums.CurrencyNGN
	}
	return &models.PaymentToken{
		Token:       value,
		UserID:      userID,
		Purpose:     purpose,
		PaystackRef: reference,
		AmountKobo:  verified.AmountKobo,
		Currency:    currency,
		HandoffID:   handoffID,
		Consumed:    true,
	}, nil
}

func (s *service) seedLedger(ctx context.Context, repo ledger.Repository, handoffID uuid.UUID, amountKobo int64, purpose enums.PaymentPurpose) error {
	entry := &models.HandoffPayment{
		HandoffID:  handoffID,
		AmountKobo: amountKobo,
		Currency:   enums.CurrencyNGN,
		Purpose:    purpose,
		PaidAt:     time.Now(),
	}
	if err := repo.CreatePayment(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed payment entry")
	}
	fin := &models.HandoffFinancials{
		HandoffID:     handoffID,
		Currency:      enums.CurrencyNGN,
		TotalDueKobo:  amountKobo,
		TotalPaidKobo: amountKobo,
		BalanceKobo:   0,
	}
	if err := repo.CreateFinancials(ctx, fin); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed financials")
	}
	return nil
}

func (s *service) notifyOpened(ctx context.Context, handoffID *uuid.UUID) {
	if s.notifier == nil || handoffID == nil {
		return
	}
	handoff, err := s.handoffRepo.FindByID(ctx, *handoffID)
	if err != nil {
		s.logger.Error(ctx, "load handoff for notification", err)
		return
	}
	if err := s.notifier.HandoffOpened(ctx, handoff); err != nil {
		s.logger.Error(ctx, "handoff opened notification failed", err)
	}
}

func resolvePurpose(metadata map[string]any, requested enums.PaymentPurpose) enums.PaymentPurpose {
	if raw := metadataString(metadata, "purpose"); raw != nil {
		if parsed, err := enums.ParsePaymentPurpose(*raw); err == nil {
			return parsed
		}
	}
	if requested.IsValid() {
		return requested
	}
	return enums.PaymentPurposeFullPayment
}

// reorderSource extracts the source handoff id when the transaction metadata
// marks the payment as a reorder.
func reorderSource(metadata map[string]any) (uuid.UUID, bool) {
	raw := metadataString(metadata, "source_handoff_id")
	if raw == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func metadataString(metadata map[string]any, key string) *string {
	if metadata == nil {
		return nil
	}
	value, ok := metadata[key].(string)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func customerName(customer paystack.CustomerRef) string {
	name := strings.TrimSpace(strings.TrimSpace(customer.FirstName) + " " + strings.TrimSpace(customer.LastName))
	if name != "" {
		return name
	}
	return customer.Email
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
