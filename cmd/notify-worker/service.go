package main

import (
	"context"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/outbox/registry"
)

type dbClient interface {
	Ping(context.Context) error
}

type pubSubClient interface {
	Ping(context.Context) error
	NotificationSubscription() *gcppubsub.Subscriber
}

type messageHandler interface {
	Handle(ctx context.Context, data []byte, attributes map[string]string) error
}

type ServiceParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       dbClient
	PubSub   pubSubClient
	Consumer messageHandler
}

// Service pulls notification events off Pub/Sub and hands them to the
// consumer. Non-retryable failures are acked so poison messages never wedge
// the subscription.
type Service struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       dbClient
	pubsub   pubSubClient
	consumer messageHandler
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("consumer is required")
	}
	return &Service{
		cfg:      params.Config,
		logg:     params.Logger,
		db:       params.DB,
		pubsub:   params.PubSub,
		consumer: params.Consumer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	sub := s.pubsub.NotificationSubscription()
	if sub == nil {
		return errors.New("notification subscription not configured")
	}

	err := sub.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		handleErr := s.consumer.Handle(msgCtx, msg.Data, msg.Attributes)
		if shouldAck(handleErr) {
			if handleErr != nil {
				logCtx := s.logg.WithField(msgCtx, "error", handleErr.Error())
				s.logg.Warn(logCtx, "dropping non-retryable notification event")
			}
			msg.Ack()
			return
		}
		s.logg.Error(msgCtx, "notification event failed, nacking for retry", handleErr)
		msg.Nack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("receive loop: %w", err)
	}
	return ctx.Err()
}

// shouldAck reports whether a handler error is terminal for the message.
func shouldAck(err error) bool {
	if err == nil {
		return true
	}
	var nonRetry registry.NonRetryableError
	return errors.As(err, &nonRetry)
}
