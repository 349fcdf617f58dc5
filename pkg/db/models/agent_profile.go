package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// AgentProfile holds the onboarding checklist and permissions for an internal agent.
type AgentProfile struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID                 `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Username           string                    `gorm:"column:username;not null;uniqueIndex"`
	Email              string                    `gorm:"column:email;not null"`
	IsActive           bool                      `gorm:"column:is_active;not null;default:true"`
	Phone              *string                   `gorm:"column:phone"`
	PhoneVerified      bool                      `gorm:"column:phone_verified;not null;default:false"`
	NIN                *string                   `gorm:"column:nin"`
	NINVerified        bool                      `gorm:"column:nin_verified;not null;default:false"`
	Address            *string                   `gorm:"column:address"`
	BankVerified       bool                      `gorm:"column:bank_verified;not null;default:false"`
	ApprovalStatus     enums.AgentApprovalStatus `gorm:"column:approval_status;type:agent_approval_status;not null;default:'pending'"`
	ApprovedAt         *time.Time                `gorm:"column:approved_at"`
	CanViewLeads       bool                      `gorm:"column:can_view_leads;not null;default:true"`
	CanViewHandoffs    bool                      `gorm:"column:can_view_handoffs;not null;default:true"`
	CanViewAnalytics   bool                      `gorm:"column:can_view_analytics;not null;default:false"`
	ClaimLimitOverride *int                      `gorm:"column:claim_limit_override"`
	ExpoPushToken      *string                   `gorm:"column:expo_push_token"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
