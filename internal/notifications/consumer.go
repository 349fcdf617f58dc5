package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/reorders"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
	"github.com/linescout/linescout-backend/pkg/outbox/registry"
)

// Message attribute keys stamped by the outbox dispatcher.
const (
	AttrEventType     = "event_type"
	AttrAggregateType = "aggregate_type"
	AttrAggregateID   = "aggregate_id"
)

// Consumer turns outbox events arriving over Pub/Sub into deliveries.
type Consumer struct {
	registry    *registry.EventRegistry
	fanout      *Fanout
	handoffRepo handoffs.Repository
	reorderRepo reorders.Repository
	logger      *logger.Logger
}

// NewConsumer wires the notify worker's message handler.
func NewConsumer(
	reg *registry.EventRegistry,
	fanout *Fanout,
	handoffRepo handoffs.Repository,
	reorderRepo reorders.Repository,
	logg *logger.Logger,
) (*Consumer, error) {
	if reg == nil {
		return nil, fmt.Errorf("event registry required")
	}
	if fanout == nil {
		return nil, fmt.Errorf("fanout required")
	}
	if handoffRepo == nil {
		return nil, fmt.Errorf("handoffs repository required")
	}
	if reorderRepo == nil {
		return nil, fmt.Errorf("reorders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		registry:    reg,
		fanout:      fanout,
		handoffRepo: handoffRepo,
		reorderRepo: reorderRepo,
		logger:      logg,
	}, nil
}

// Handle processes one Pub/Sub message. A registry.NonRetryableError means the
// message should be acked without retrying; any other error triggers a nack.
func (c *Consumer) Handle(ctx context.Context, data []byte, attributes map[string]string) error {
	event, err := eventFromMessage(data, attributes)
	if err != nil {
		return registry.NewNonRetryableError(err)
	}

	resolved, err := c.registry.Resolve(*event)
	if err != nil {
		return err
	}

	ctx = c.logger.WithFields(ctx, map[string]any{
		"event_type":   string(event.EventType),
		"aggregate_id": event.AggregateID.String(),
	})

	switch payload := resolved.Payload.(type) {
	case *payloads.HandoffCreatedEvent:
		return c.handleHandoffCreated(ctx, payload.HandoffID)
	case *payloads.HandoffPaidEvent:
		return c.handleHandoffPaid(ctx, payload.HandoffID)
	case *payloads.ReorderCreatedEvent:
		return c.handleReorderCreated(ctx, payload.ReorderID)
	case *payloads.ReorderAssignedEvent:
		return c.handleReorderAssigned(ctx, payload.ReorderID)
	default:
		// Other event types carry no delivery work.
		c.logger.Info(ctx, "event type has no delivery handler, acking")
		return nil
	}
}

func (c *Consumer) handleHandoffCreated(ctx context.Context, handoffID uuid.UUID) error {
	handoff, err := c.handoffRepo.FindByID(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return registry.NewNonRetryableError(fmt.Errorf("handoff %s not found", handoffID))
		}
		return fmt.Errorf("load handoff: %w", err)
	}
	// Fan-out failures are logged inside; the message is still acked.
	_ = c.fanout.HandoffOpened(ctx, handoff)
	return nil
}

func (c *Consumer) handleHandoffPaid(ctx context.Context, handoffID uuid.UUID) error {
	handoff, err := c.handoffRepo.FindByID(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return registry.NewNonRetryableError(fmt.Errorf("handoff %s not found", handoffID))
		}
		return fmt.Errorf("load handoff: %w", err)
	}
	_ = c.fanout.HandoffPaid(ctx, handoff)
	return nil
}

func (c *Consumer) handleReorderCreated(ctx context.Context, reorderID uuid.UUID) error {
	reorder, err := c.loadReorder(ctx, reorderID)
	if err != nil {
		return err
	}
	if reorder == nil {
		return nil
	}
	if reorder.Status == enums.ReorderStatusPendingAdmin {
		_ = c.fanout.ReorderPendingAdmin(ctx, reorder)
	} else {
		_ = c.fanout.ReorderAssigned(ctx, reorder)
	}
	return nil
}

func (c *Consumer) handleReorderAssigned(ctx context.Context, reorderID uuid.UUID) error {
	reorder, err := c.loadReorder(ctx, reorderID)
	if err != nil {
		return err
	}
	if reorder == nil {
		return nil
	}
	_ = c.fanout.ReorderAssigned(ctx, reorder)
	return nil
}

func (c *Consumer) loadReorder(ctx context.Context, reorderID uuid.UUID) (*models.ReorderRequest, error) {
	reorder, err := c.reorderRepo.FindByID(ctx, reorderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.logger.Warn(ctx, "reorder vanished before delivery")
			return nil, nil
		}
		return nil, fmt.Errorf("load reorder: %w", err)
	}
	return reorder, nil
}

func eventFromMessage(data []byte, attributes map[string]string) (*models.OutboxEvent, error) {
	eventType, err := enums.ParseOutboxEventType(attributes[AttrEventType])
	if err != nil {
		return nil, err
	}
	aggregateType, err := enums.ParseOutboxAggregateType(attributes[AttrAggregateType])
	if err != nil {
		return nil, err
	}
	aggregateID, err := uuid.Parse(attributes[AttrAggregateID])
	if err != nil {
		return nil, fmt.Errorf("parse aggregate id: %w", err)
	}
	return &models.OutboxEvent{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       data,
	}, nil
}
