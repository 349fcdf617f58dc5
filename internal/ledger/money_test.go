package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
)

func TestNairaToKobo(t *testing.T) {
	kobo, err := NairaToKobo(decimal.NewFromFloat(25000.50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kobo != 2_500_050 {
		t.Fatalf("expected 2500050, got %d", kobo)
	}

	_, err = NairaToKobo(decimal.RequireFromString("10.005"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for sub-kobo amount, got %v", err)
	}
}

func TestKoboToNaira(t *testing.T) {
	naira := KoboToNaira(2_500_050)
	if !naira.Equal(decimal.RequireFromString("25000.5")) {
		t.Fatalf("unexpected naira %s", naira)
	}
}
