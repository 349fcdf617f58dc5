package handoffs

import (
	"testing"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
)

func actionsEqual(got, want []enums.HandoffAction) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAllowedNextActionsByStatus(t *testing.T) {
	settled := &models.HandoffFinancials{TotalDueKobo: 1_500_000, TotalPaidKobo: 1_500_000, BalanceKobo: 0}
	owing := &models.HandoffFinancials{TotalDueKobo: 1_500_000, TotalPaidKobo: 500_000, BalanceKobo: 1_000_000}

	cases := []struct {
		name   string
		status enums.HandoffStatus
		fin    *models.HandoffFinancials
		want   []enums.HandoffAction
	}{
		{
			name:   "pending",
			status: enums.HandoffStatusPending,
			want:   []enums.HandoffAction{enums.ActionClaim, enums.ActionCancel},
		},
		{
			name:   "claimed",
			status: enums.HandoffStatusClaimed,
			want:   []enums.HandoffAction{enums.ActionManufacturerFound, enums.ActionCancel},
		},
		{
			name:   "manufacturer found with balance outstanding hides mark_paid",
			status: enums.HandoffStatusManufacturerFound,
			fin:    owing,
			want:   []enums.HandoffAction{enums.ActionRecordPayment, enums.ActionCancel},
		},
		{
			name:   "manufacturer found settled offers mark_paid",
			status: enums.HandoffStatusManufacturerFound,
			fin:    settled,
			want:   []enums.HandoffAction{enums.ActionRecordPayment, enums.ActionMarkPaid, enums.ActionCancel},
		},
		{
			name:   "manufacturer found with no ledger hides mark_paid",
			status: enums.HandoffStatusManufacturerFound,
			want:   []enums.HandoffAction{enums.ActionRecordPayment, enums.ActionCancel},
		},
		{
			name:   "paid",
			status: enums.HandoffStatusPaid,
			fin:    settled,
			want:   []enums.HandoffAction{enums.ActionRecordPayment, enums.ActionMarkShipped, enums.ActionCancel},
		},
		{
			name:   "shipped",
			status: enums.HandoffStatusShipped,
			fin:    settled,
			want:   []enums.HandoffAction{enums.ActionRecordPayment, enums.ActionMarkDelivered, enums.ActionCancel},
		},
		{
			name:   "delivered",
			status: enums.HandoffStatusDelivered,
			fin:    settled,
			want:   []enums.HandoffAction{enums.ActionRecordPayment, enums.ActionCancel},
		},
		{
			name:   "cancelled is terminal",
			status: enums.HandoffStatusCancelled,
			want:   []enums.HandoffAction{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &models.Handoff{Status: tc.status}
			got := AllowedNextActions(h, tc.fin)
			if !actionsEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestStatusAllows(t *testing.T) {
	if !StatusAllows(enums.HandoffStatusPending, enums.ActionClaim) {
		t.Fatal("claim should be allowed from pending")
	}
	if StatusAllows(enums.HandoffStatusPending, enums.ActionMarkShipped) {
		t.Fatal("mark_shipped should not be allowed from pending")
	}
	if StatusAllows(enums.HandoffStatusCancelled, enums.ActionCancel) {
		t.Fatal("no action should be allowed from cancelled")
	}
	if !StatusAllows(enums.HandoffStatusManufacturerFound, enums.ActionMarkPaid) {
		t.Fatal("mark_paid should be state-valid from manufacturer_found")
	}
	if !StatusAllows(enums.HandoffStatusDelivered, enums.ActionRecordPayment) {
		t.Fatal("record_payment should be allowed from delivered")
	}
}

func TestSettled(t *testing.T) {
	if Settled(nil) {
		t.Fatal("nil financials are never settled")
	}
	if Settled(&models.HandoffFinancials{TotalDueKobo: 0, BalanceKobo: 0}) {
		t.Fatal("zero total_due means no reference amount was set")
	}
	if !Settled(&models.HandoffFinancials{TotalDueKobo: 100, TotalPaidKobo: 150, BalanceKobo: 0}) {
		t.Fatal("overpaid handoff should be settled")
	}
}
