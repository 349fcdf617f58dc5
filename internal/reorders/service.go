package reorders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/internal/conversations"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/ledger"
	"github.com/linescout/linescout-backend/internal/quotes"
	dbpkg "github.com/linescout/linescout-backend/pkg/db"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
	"github.com/linescout/linescout-backend/pkg/pagination"
	"github.com/linescout/linescout-backend/pkg/token"
)

const paystackRefConstraint = "reorder_requests_paystack_ref_key"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateReorderInput captures a repeat-purchase request from a customer.
type CreateReorderInput struct {
	UserID          uuid.UUID
	SourceHandoffID uuid.UUID
	PaystackRef     string
	AmountKobo      int64
	UserNote        *string
}

// ReorderResult is what the customer-facing flow returns. AlreadyProcessed
// means the paystack reference was seen before and no new rows were written.
type ReorderResult struct {
	Reorder          *models.ReorderRequest `json:"reorder"`
	AlreadyProcessed bool                   `json:"already_processed"`
}

// AssignInput routes a pending reorder to an agent.
type AssignInput struct {
	ReorderID   uuid.UUID
	AgentID     uuid.UUID
	AdminNote   *string
	ActorUserID uuid.UUID
}

// Service defines reorder linker operations.
type Service interface {
	CreateReorder(ctx context.Context, input CreateReorderInput) (*ReorderResult, error)
	Assign(ctx context.Context, input AssignInput) (*models.ReorderRequest, error)
	Close(ctx context.Context, reorderID uuid.UUID) error
	Get(ctx context.Context, reorderID uuid.UUID) (*models.ReorderRequest, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReorderList, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ReorderRequest, error)
}

type service struct {
	repo             Repository
	handoffRepo      handoffs.Repository
	conversationRepo conversations.Repository
	quoteRepo        quotes.Repository
	ledgerRepo       ledger.Repository
	tx               txRunner
	outbox           outboxPublisher
	gate             handoffs.AgentGate
}

// NewService wires the reorder linker with its dependencies.
func NewService(
	repo Repository,
	handoffRepo handoffs.Repository,
	conversationRepo conversations.Repository,
	quoteRepo quotes.Repository,
	ledgerRepo ledger.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	gate handoffs.AgentGate,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reorders repository required")
	}
	if handoffRepo == nil {
		return nil, fmt.Errorf("handoffs repository required")
	}
	if conversationRepo == nil {
		return nil, fmt.Errorf("conversations repository required")
	}
	if quoteRepo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gate == nil {
		return nil, fmt.Errorf("agent gate required")
	}
	return &service{
		repo:             repo,
		handoffRepo:      handoffRepo,
		conversationRepo: conversationRepo,
		quoteRepo:        quoteRepo,
		ledgerRepo:       ledgerRepo,
		tx:               tx,
		outbox:           outboxSvc,
		gate:             gate,
	}, nil
}

func (s *service) CreateReorder(ctx context.Context, input CreateReorderInput) (*ReorderResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.SourceHandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source handoff id required")
	}
	paystackRef := strings.TrimSpace(input.PaystackRef)
	if paystackRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paystack reference required")
	}
	if input.AmountKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	if existing, err := s.repo.FindByPaystackRef(ctx, paystackRef); err == nil {
		return &ReorderResult{Reorder: existing, AlreadyProcessed: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check paystack reference")
	}

	var created *models.ReorderRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoffRepo := s.handoffRepo.WithTx(tx)
		conversationRepo := s.conversationRepo.WithTx(tx)
		quoteRepo := s.quoteRepo.WithTx(tx)
		ledgerRepo := s.ledgerRepo.WithTx(tx)

		source, err := handoffRepo.FindByID(ctx, input.SourceHandoffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "source handoff not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source handoff")
		}

		sourceConversation, err := s.ownedConversation(ctx, conversationRepo, source, input.UserID)
		if err != nil {
			return err
		}

		if source.Status != enums.HandoffStatusDelivered && source.DeliveredAt == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "source handoff has not been delivered")
		}

		brief := s.buildBrief(ctx, quoteRepo, source, input.AmountKobo)

		originalAgentID := source.ClaimedBy
		assignedAgentID, status := s.resolveAssignment(ctx, originalAgentID)

		conversation := &models.Conversation{
			UserID:  input.UserID,
			Channel: "app",
			Brief:   &brief,
			Context: input.UserNote,
		}
		if _, err := conversationRepo.Create(ctx, conversation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversation")
		}

		handoffToken, err := token.New("ho")
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate handoff token")
		}
		newHandoff := &models.Handoff{
			Token:            handoffToken,
			Type:             source.Type,
			Mode:             enums.HandoffModePaidHuman,
			Status:           enums.HandoffStatusPending,
			CustomerName:     source.CustomerName,
			CustomerEmail:    source.CustomerEmail,
			CustomerWhatsapp: source.CustomerWhatsapp,
			Context:          &brief,
			ConversationID:   &conversation.ID,
		}
		if assignedAgentID != nil {
			now := time.Now()
			newHandoff.Status = enums.HandoffStatusClaimed
			newHandoff.ClaimedBy = assignedAgentID
			newHandoff.ClaimedAt = &now
		}
		if _, err := handoffRepo.Create(ctx, newHandoff); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create handoff")
		}
		if err := conversationRepo.Update(ctx, conversation.ID, map[string]any{"handoff_id": newHandoff.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link conversation")
		}

		if err := s.seedLedger(ctx, ledgerRepo, newHandoff.ID, input.AmountKobo); err != nil {
			return err
		}

		reorder := &models.ReorderRequest{
			UserID:               input.UserID,
			SourceConversationID: conversationID(sourceConversation),
			SourceHandoffID:      source.ID,
			NewConversationID:    conversation.ID,
			NewHandoffID:         newHandoff.ID,
			RouteType:            "reorder",
			Status:               status,
			OriginalAgentID:      originalAgentID,
			AssignedAgentID:      assignedAgentID,
			UserNote:             input.UserNote,
			PaystackRef:          paystackRef,
			AmountKobo:           input.AmountKobo,
		}
		if _, err := repo.Create(ctx, reorder); err != nil {
			if dbpkg.IsUniqueViolation(err, paystackRefConstraint) {
				return errDuplicateRef
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reorder")
		}
		created = reorder

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReorderCreated,
			AggregateType: enums.AggregateReorder,
			AggregateID:   reorder.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.SystemRoleCustomer)},
			Data: payloads.ReorderCreatedEvent{
				ReorderID:       reorder.ID,
				SourceHandoffID: source.ID,
				NewHandoffID:    newHandoff.ID,
				Status:          status,
				AssignedAgentID: assignedAgentID,
			},
		})
	})
	if errors.Is(err, errDuplicateRef) {
		// A concurrent request with the same reference won the insert race.
		existing, lookupErr := s.repo.FindByPaystackRef(ctx, paystackRef)
		if lookupErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "load existing reorder")
		}
		return &ReorderResult{Reorder: existing, AlreadyProcessed: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ReorderResult{Reorder: created}, nil
}

var errDuplicateRef = errors.New("duplicate paystack reference")

func (s *service) Assign(ctx context.Context, input AssignInput) (*models.ReorderRequest, error) {
	if input.ReorderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder id required")
	}
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}

	eligible, err := s.gate.ClaimEligible(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent is not approved and active")
	}

	var assigned *models.ReorderRequest
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoffRepo := s.handoffRepo.WithTx(tx)

		reorder, err := repo.FindByID(ctx, input.ReorderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reorder not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reorder")
		}
		if reorder.Status != enums.ReorderStatusPendingAdmin {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reorder is not awaiting assignment")
		}

		updates := map[string]any{
			"assigned_agent_id": input.AgentID,
			"status":            enums.ReorderStatusAssigned,
		}
		if input.AdminNote != nil {
			updates["admin_note"] = strings.TrimSpace(*input.AdminNote)
		}
		if err := repo.Update(ctx, reorder.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign reorder")
		}

		if rows, err := handoffRepo.ClaimPending(ctx, reorder.NewHandoffID, input.AgentID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim handoff for agent")
		} else if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "downstream handoff is no longer pending")
		}

		agentID := input.AgentID
		reorder.AssignedAgentID = &agentID
		reorder.Status = enums.ReorderStatusAssigned
		reorder.AdminNote = input.AdminNote
		assigned = reorder

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReorderAssigned,
			AggregateType: enums.AggregateReorder,
			AggregateID:   reorder.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.SystemRoleAdmin)},
			Data: payloads.ReorderAssignedEvent{
				ReorderID:  reorder.ID,
				AgentID:    input.AgentID,
				AssignedAt: time.Now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

// Close marks a reorder resolved once its downstream handoff reaches a
// terminal state.
func (s *service) Close(ctx context.Context, reorderID uuid.UUID) error {
	if reorderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reorder id required")
	}
	reorder, err := s.repo.FindByID(ctx, reorderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reorder not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reorder")
	}
	if reorder.Status == enums.ReorderStatusClosed {
		return nil
	}
	if err := s.repo.Update(ctx, reorderID, map[string]any{"status": enums.ReorderStatusClosed}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close reorder")
	}
	return nil
}

func (s *service) Get(ctx context.Context, reorderID uuid.UUID) (*models.ReorderRequest, error) {
	if reorderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder id required")
	}
	reorder, err := s.repo.FindByID(ctx, reorderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reorder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reorder")
	}
	return reorder, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReorderList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reorders")
	}
	return list, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ReorderRequest, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reorders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reorders")
	}
	return reorders, nil
}

// ownedConversation resolves the source conversation and enforces that the
// source handoff belongs to the requesting user.
func (s *service) ownedConversation(ctx context.Context, repo conversations.Repository, source *models.Handoff, userID uuid.UUID) (*models.Conversation, error) {
	if source.ConversationID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "source handoff does not belong to user")
	}
	conversation, err := repo.FindByID(ctx, *source.ConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "source handoff does not belong to user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source conversation")
	}
	if conversation.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "source handoff does not belong to user")
	}
	return conversation, nil
}

// buildBrief copies the latest quote summary into the new conversation brief.
// A missing quote is not an error; the brief falls back to the source context.
func (s *service) buildBrief(ctx context.Context, quoteRepo quotes.Repository, source *models.Handoff, amountKobo int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reorder of handoff %s.", source.Token)
	if quote, err := quoteRepo.LatestForHandoff(ctx, source.ID); err == nil {
		fmt.Fprintf(&b, " Last quote: %s NGN %s.", quote.PaymentPurpose, formatNaira(quote.TotalDueKobo))
		if quote.AgentNote != nil && strings.TrimSpace(*quote.AgentNote) != "" {
			fmt.Fprintf(&b, " Note: %s", strings.TrimSpace(*quote.AgentNote))
		}
	} else if source.Context != nil && strings.TrimSpace(*source.Context) != "" {
		fmt.Fprintf(&b, " %s", strings.TrimSpace(*source.Context))
	}
	fmt.Fprintf(&b, " Paid NGN %s upfront.", formatNaira(amountKobo))
	return b.String()
}

// resolveAssignment routes the reorder back to the original agent when that
// agent is still approved and active, otherwise parks it for an admin.
func (s *service) resolveAssignment(ctx context.Context, originalAgentID *uuid.UUID) (*uuid.UUID, enums.ReorderStatus) {
	if originalAgentID == nil {
		return nil, enums.ReorderStatusPendingAdmin
	}
	eligible, err := s.gate.ClaimEligible(ctx, *originalAgentID)
	if err != nil || !eligible {
		return nil, enums.ReorderStatusPendingAdmin
	}
	id := *originalAgentID
	return &id, enums.ReorderStatusAssigned
}

// seedLedger records the upfront Paystack payment as the opening ledger state
// for the new handoff.
func (s *service) seedLedger(ctx context.Context, repo ledger.Repository, handoffID uuid.UUID, amountKobo int64) error {
	entry := &models.HandoffPayment{
		HandoffID:  handoffID,
		AmountKobo: amountKobo,
		Currency:   enums.CurrencyNGN,
		Purpose:    enums.PaymentPurposeFullPayment,
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

func conversationID(c *models.Conversation) *uuid.UUID {
	if c == nil {
		return nil
	}
	id := c.ID
	return &id
}

func formatNaira(kobo int64) string {
	return decimal.NewFromInt(kobo).Div(decimal.NewFromInt(100)).StringFixed(2)
}
