package ledger

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
)

var koboPerNaira = decimal.NewFromInt(100)

// NairaToKobo converts a naira amount into kobo. Fractional kobo are
// rejected rather than rounded; money never loses precision silently.
func NairaToKobo(naira decimal.Decimal) (int64, error) {
	kobo := naira.Mul(koboPerNaira)
	if !kobo.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount has sub-kobo precision")
	}
	return kobo.IntPart(), nil
}

// KoboToNaira converts a kobo amount back into naira for display.
func KoboToNaira(kobo int64) decimal.Decimal {
	return decimal.NewFromInt(kobo).Div(koboPerNaira)
}
