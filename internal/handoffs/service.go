package handoffs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AgentGate reports whether the agent behind a user may claim handoffs.
// Implemented by the agents service: approved approval status plus active flag.
type AgentGate interface {
	ClaimEligible(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Service defines the handoff lifecycle operations.
type Service interface {
	Claim(ctx context.Context, input ClaimInput) (*models.Handoff, error)
	MarkManufacturerFound(ctx context.Context, input ManufacturerFoundInput) (*models.Handoff, error)
	MarkPaid(ctx context.Context, input MarkPaidInput) (*models.Handoff, error)
	MarkShipped(ctx context.Context, input MarkShippedInput) (*models.Handoff, error)
	MarkDelivered(ctx context.Context, input MarkDeliveredInput) (*models.Handoff, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Handoff, error)
	Actions(ctx context.Context, handoffID uuid.UUID) (*ActionList, error)
	Get(ctx context.Context, handoffID uuid.UUID) (*models.Handoff, error)
	Queue(ctx context.Context, params pagination.Params) (*HandoffList, error)
	ListForAgent(ctx context.Context, agentUserID uuid.UUID, params pagination.Params) (*HandoffList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	gate   AgentGate
}

// NewService builds a handoff service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, gate AgentGate) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("handoffs repository required")
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
	return &service{repo: repo, tx: tx, outbox: outboxSvc, gate: gate}, nil
}

func (s *service) Claim(ctx context.Context, input ClaimInput) (*models.Handoff, error) {
	if input.HandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}

	eligible, err := s.gate.ClaimEligible(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agent is not approved for claims")
	}

	var claimed *models.Handoff
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.ClaimPending(ctx, input.HandoffID, input.AgentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim handoff")
		}
		if rows == 0 {
			if _, err := repo.FindByID(ctx, input.HandoffID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "handoff not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handoff")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "handoff no longer available, refresh and retry")
		}

		handoff, err := repo.FindByID(ctx, input.HandoffID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload handoff")
		}
		claimed = handoff

		claimedAt := time.Now()
		if handoff.ClaimedAt != nil {
			claimedAt = *handoff.ClaimedAt
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventHandoffClaimed,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   handoff.ID,
			Version:       1,
			Actor:         buildActor(input.AgentID, enums.SystemRoleAgent),
			Data: payloads.HandoffClaimedEvent{
				HandoffID: handoff.ID,
				AgentID:   input.AgentID,
				ClaimedAt: claimedAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *service) MarkManufacturerFound(ctx context.Context, input ManufacturerFoundInput) (*models.Handoff, error) {
	if input.HandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	name := strings.TrimSpace(input.ManufacturerName)
	contact := strings.TrimSpace(input.ManufacturerContact)
	if name == "" || contact == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manufacturer name and contact required")
	}

	var updated *models.Handoff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoff, err := s.loadForAction(ctx, repo, input.HandoffID, input.Actor, enums.ActionManufacturerFound)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]any{
			"status":                enums.HandoffStatusManufacturerFound,
			"manufacturer_name":     name,
			"manufacturer_contact":  contact,
			"manufacturer_found_at": now,
		}
		if input.ManufacturerAddress != nil {
			updates["manufacturer_address"] = strings.TrimSpace(*input.ManufacturerAddress)
		}
		if err := repo.Update(ctx, handoff.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update handoff")
		}

		handoff.Status = enums.HandoffStatusManufacturerFound
		handoff.ManufacturerName = &name
		handoff.ManufacturerContact = &contact
		handoff.ManufacturerFoundAt = &now
		if input.ManufacturerAddress != nil {
			handoff.ManufacturerAddress = input.ManufacturerAddress
		}
		updated = handoff

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventManufacturerFound,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   handoff.ID,
			Version:       1,
			Actor:         buildActor(input.Actor.UserID, input.Actor.Role),
			Data: payloads.ManufacturerFoundEvent{
				HandoffID:        handoff.ID,
				AgentID:          input.Actor.UserID,
				ManufacturerName: name,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkPaid(ctx context.Context, input MarkPaidInput) (*models.Handoff, error) {
	if input.HandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	if input.AdminOverride && input.Actor.Role != enums.SystemRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may override the balance guard")
	}

	var updated *models.Handoff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoff, err := s.loadForAction(ctx, repo, input.HandoffID, input.Actor, enums.ActionMarkPaid)
		if err != nil {
			return err
		}

		fin := handoff.Financials
		if fin == nil {
			loaded, err := repo.FindFinancials(ctx, handoff.ID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load financials")
			}
			fin = loaded
		}
		if !Settled(fin) && !input.AdminOverride {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "balance outstanding, settle the ledger or use admin override")
		}

		now := time.Now()
		updates := map[string]any{
			"status":  enums.HandoffStatusPaid,
			"paid_at": now,
		}
		if err := repo.Update(ctx, handoff.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update handoff")
		}

		handoff.Status = enums.HandoffStatusPaid
		handoff.PaidAt = &now
		updated = handoff

		event := payloads.HandoffPaidEvent{
			HandoffID:     handoff.ID,
			PaidAt:        now,
			AdminOverride: input.AdminOverride,
		}
		if fin != nil {
			event.TotalPaidKobo = fin.TotalPaidKobo
			event.BalanceKobo = fin.BalanceKobo
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventHandoffPaid,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   handoff.ID,
			Version:       1,
			Actor:         buildActor(input.Actor.UserID, input.Actor.Role),
			Data:          event,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkShipped(ctx context.Context, input MarkShippedInput) (*models.Handoff, error) {
	if input.HandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	shipper := strings.TrimSpace(input.Shipper)
	tracking := strings.TrimSpace(input.TrackingRef)
	if shipper == "" || tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipper and tracking reference required")
	}

	var updated *models.Handoff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoff, err := s.loadForAction(ctx, repo, input.HandoffID, input.Actor, enums.ActionMarkShipped)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := repo.Update(ctx, handoff.ID, map[string]any{
			"status":       enums.HandoffStatusShipped,
			"shipper":      shipper,
			"tracking_ref": tracking,
			"shipped_at":   now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update handoff")
		}

		handoff.Status = enums.HandoffStatusShipped
		handoff.Shipper = &shipper
		handoff.TrackingRef = &tracking
		handoff.ShippedAt = &now
		updated = handoff

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventHandoffShipped,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   handoff.ID,
			Version:       1,
			Actor:         buildActor(input.Actor.UserID, input.Actor.Role),
			Data: payloads.HandoffShippedEvent{
				HandoffID:   handoff.ID,
				Shipper:     shipper,
				TrackingRef: tracking,
				ShippedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkDelivered(ctx context.Context, input MarkDeliveredInput) (*models.Handoff, error) {
	if input.HandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}

	var updated *models.Handoff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoff, err := s.loadForAction(ctx, repo, input.HandoffID, input.Actor, enums.ActionMarkDelivered)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := repo.Update(ctx, handoff.ID, map[string]any{
			"status":       enums.HandoffStatusDelivered,
			"delivered_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update handoff")
		}

		handoff.Status = enums.HandoffStatusDelivered
		handoff.DeliveredAt = &now
		updated = handoff

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventHandoffDelivered,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   handoff.ID,
			Version:       1,
			Actor:         buildActor(input.Actor.UserID, input.Actor.Role),
			Data: payloads.HandoffDeliveredEvent{
				HandoffID:   handoff.ID,
				DeliveredAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Handoff, error) {
	if input.HandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	var updated *models.Handoff
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		handoff, err := s.loadForAction(ctx, repo, input.HandoffID, input.Actor, enums.ActionCancel)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := repo.Update(ctx, handoff.ID, map[string]any{
			"status":        enums.HandoffStatusCancelled,
			"cancel_reason": reason,
			"cancelled_at":  now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update handoff")
		}

		handoff.Status = enums.HandoffStatusCancelled
		handoff.CancelReason = &reason
		handoff.CancelledAt = &now
		updated = handoff

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventHandoffCancelled,
			AggregateType: enums.AggregateHandoff,
			AggregateID:   handoff.ID,
			Version:       1,
			Actor:         buildActor(input.Actor.UserID, input.Actor.Role),
			Data: payloads.HandoffCancelledEvent{
				HandoffID:   handoff.ID,
				Reason:      reason,
				CancelledAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Actions(ctx context.Context, handoffID uuid.UUID) (*ActionList, error) {
	if handoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	handoff, err := s.repo.FindByID(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "handoff not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handoff")
	}
	return &ActionList{
		HandoffID: handoff.ID,
		Status:    handoff.Status,
		Actions:   AllowedNextActions(handoff, handoff.Financials),
	}, nil
}

func (s *service) Get(ctx context.Context, handoffID uuid.UUID) (*models.Handoff, error) {
	if handoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	handoff, err := s.repo.FindByID(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "handoff not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handoff")
	}
	return handoff, nil
}

func (s *service) Queue(ctx context.Context, params pagination.Params) (*HandoffList, error) {
	list, err := s.repo.ListPendingUnclaimed(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending handoffs")
	}
	return list, nil
}

func (s *service) ListForAgent(ctx context.Context, agentUserID uuid.UUID, params pagination.Params) (*HandoffList, error) {
	if agentUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	list, err := s.repo.ListByAgent(ctx, agentUserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent handoffs")
	}
	return list, nil
}

// loadForAction fetches the handoff and re-validates the transition table and
// ownership before any mutation.
func (s *service) loadForAction(ctx context.Context, repo Repository, handoffID uuid.UUID, actor Actor, action enums.HandoffAction) (*models.Handoff, error) {
	handoff, err := repo.FindByID(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "handoff not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load handoff")
	}

	if !StatusAllows(handoff.Status, action) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "action no longer valid, refresh and retry")
	}

	if actor.Role == enums.SystemRoleAgent {
		if handoff.ClaimedBy == nil || *handoff.ClaimedBy != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "handoff is claimed by another agent")
		}
	}
	return handoff, nil
}

func buildActor(userID uuid.UUID, role enums.SystemRole) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		Role:   string(role),
	}
}
