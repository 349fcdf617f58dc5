package agents

import (
	"strings"

	"github.com/linescout/linescout-backend/pkg/db/models"
)

// Readiness is the onboarding checklist result for an agent profile.
type Readiness struct {
	PhoneOk     bool     `json:"phone_ok"`
	NINProvided bool     `json:"nin_provided"`
	NINOk       bool     `json:"nin_ok"`
	AddressOk   bool     `json:"address_ok"`
	BankOk      bool     `json:"bank_ok"`
	Ready       bool     `json:"ready"`
	Missing     []string `json:"missing"`
}

// ComputeReadiness evaluates the approval checklist. Pure function, no side
// effects; Ready is the conjunction of all five checks.
func ComputeReadiness(profile *models.AgentProfile) Readiness {
	var r Readiness
	if profile == nil {
		r.Missing = []string{"phone", "nin", "nin_verification", "address", "bank_verification"}
		return r
	}

	r.PhoneOk = hasValue(profile.Phone) && profile.PhoneVerified
	r.NINProvided = hasValue(profile.NIN)
	r.NINOk = r.NINProvided && profile.NINVerified
	r.AddressOk = hasValue(profile.Address)
	r.BankOk = profile.BankVerified
	r.Ready = r.PhoneOk && r.NINProvided && r.NINOk && r.AddressOk && r.BankOk

	if !r.PhoneOk {
		r.Missing = append(r.Missing, "phone")
	}
	if !r.NINProvided {
		r.Missing = append(r.Missing, "nin")
	}
	if !r.NINOk {
		r.Missing = append(r.Missing, "nin_verification")
	}
	if !r.AddressOk {
		r.Missing = append(r.Missing, "address")
	}
	if !r.BankOk {
		r.Missing = append(r.Missing, "bank_verification")
	}
	return r
}

func hasValue(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
