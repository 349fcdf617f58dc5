package quotes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
)

type fakeQuoteRepo struct {
	quotes []models.Quote
}

func (f *fakeQuoteRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeQuoteRepo) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	f.quotes = append(f.quotes, *quote)
	return quote, nil
}

func (f *fakeQuoteRepo) LatestForHandoff(ctx context.Context, handoffID uuid.UUID) (*models.Quote, error) {
	for i := len(f.quotes) - 1; i >= 0; i-- {
		if f.quotes[i].HandoffID == handoffID {
			return &f.quotes[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuoteRepo) ListByHandoff(ctx context.Context, handoffID uuid.UUID) ([]models.Quote, error) {
	var out []models.Quote
	for _, q := range f.quotes {
		if q.HandoffID == handoffID {
			out = append(out, q)
		}
	}
	return out, nil
}

func TestCreateQuote(t *testing.T) {
	repo := &fakeQuoteRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	handoffID := uuid.New()
	quote, err := svc.Create(context.Background(), CreateQuoteInput{
		HandoffID:    handoffID,
		AgentID:      uuid.New(),
		TotalDueKobo: 1_500_000,
		Purpose:      enums.PaymentPurposeFullPayment,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if quote.Token == "" {
		t.Fatal("expected generated token")
	}
	if quote.Currency != enums.CurrencyNGN {
		t.Fatalf("expected NGN default, got %s", quote.Currency)
	}

	latest, err := svc.LatestForHandoff(context.Background(), handoffID)
	if err != nil {
		t.Fatalf("LatestForHandoff error: %v", err)
	}
	if latest.ID != quote.ID {
		t.Fatal("latest quote mismatch")
	}
}

func TestCreateQuoteValidation(t *testing.T) {
	svc, _ := NewService(&fakeQuoteRepo{})

	_, err := svc.Create(context.Background(), CreateQuoteInput{
		HandoffID:    uuid.New(),
		AgentID:      uuid.New(),
		TotalDueKobo: 0,
		Purpose:      enums.PaymentPurposeDownpayment,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLatestForHandoffNotFound(t *testing.T) {
	svc, _ := NewService(&fakeQuoteRepo{})

	_, err := svc.LatestForHandoff(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
