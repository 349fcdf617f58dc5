package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/token"
)

// CreateQuoteInput captures a price an agent puts in front of a customer.
type CreateQuoteInput struct {
	HandoffID    uuid.UUID
	AgentID      uuid.UUID
	TotalDueKobo int64
	Currency     enums.Currency
	Purpose      enums.PaymentPurpose
	Note         *string
}

// Service defines quote operations.
type Service interface {
	Create(ctx context.Context, input CreateQuoteInput) (*models.Quote, error)
	LatestForHandoff(ctx context.Context, handoffID uuid.UUID) (*models.Quote, error)
	ListByHandoff(ctx context.Context, handoffID uuid.UUID) ([]models.Quote, error)
}

type service struct {
	repo Repository
}

// NewService wires a quote service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateQuoteInput) (*models.Quote, error) {
	if input.HandoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	if input.TotalDueKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote total must be positive")
	}
	if !input.Purpose.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment purpose %q", input.Purpose))
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyNGN
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}

	quoteToken, err := token.New("qt")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate quote token")
	}

	quote := &models.Quote{
		HandoffID:      input.HandoffID,
		Token:          quoteToken,
		PaymentPurpose: input.Purpose,
		AgentNote:      input.Note,
		TotalDueKobo:   input.TotalDueKobo,
		Currency:       currency,
		CreatedBy:      input.AgentID,
	}
	created, err := s.repo.Create(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
	}
	return created, nil
}

func (s *service) LatestForHandoff(ctx context.Context, handoffID uuid.UUID) (*models.Quote, error) {
	if handoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	quote, err := s.repo.LatestForHandoff(ctx, handoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no quote for handoff")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest quote")
	}
	return quote, nil
}

func (s *service) ListByHandoff(ctx context.Context, handoffID uuid.UUID) ([]models.Quote, error) {
	if handoffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handoff id required")
	}
	list, err := s.repo.ListByHandoff(ctx, handoffID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return list, nil
}
