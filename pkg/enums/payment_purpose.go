package enums

import "fmt"

// PaymentPurpose classifies a ledger entry against a handoff.
type PaymentPurpose string

const (
	PaymentPurposeDownpayment PaymentPurpose = "downpayment"
	PaymentPurposeFullPayment PaymentPurpose = "full_payment"
	PaymentPurposeShipping    PaymentPurpose = "shipping_payment"
	PaymentPurposeAdditional  PaymentPurpose = "additional_payment"
)

var validPaymentPurposes = []PaymentPurpose{
	PaymentPurposeDownpayment,
	PaymentPurposeFullPayment,
	PaymentPurposeShipping,
	PaymentPurposeAdditional,
}

// String implements fmt.Stringer.
func (p PaymentPurpose) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentPurpose.
func (p PaymentPurpose) IsValid() bool {
	for _, candidate := range validPaymentPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentPurpose converts raw input into a PaymentPurpose.
func ParsePaymentPurpose(value string) (PaymentPurpose, error) {
	for _, candidate := range validPaymentPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment purpose %q", value)
}
