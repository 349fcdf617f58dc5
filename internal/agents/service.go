package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AgentList is a cursor-paginated page of agent profiles.
type AgentList struct {
	Agents     []models.AgentProfile `json:"agents"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// AgentDetail pairs a profile with its computed readiness checklist.
type AgentDetail struct {
	Profile   *models.AgentProfile `json:"profile"`
	Readiness Readiness            `json:"readiness"`
}

// UpdateProfileInput carries back-office edits to an agent profile.
type UpdateProfileInput struct {
	AgentID       uuid.UUID
	Phone         *string
	PhoneVerified *bool
	NIN           *string
	NINVerified   *bool
	Address       *string
	BankVerified  *bool
	ExpoPushToken *string
}

// Service defines agent gate and back-office operations.
type Service interface {
	Get(ctx context.Context, agentID uuid.UUID) (*AgentDetail, error)
	List(ctx context.Context, params pagination.Params) (*AgentList, error)
	ListEligible(ctx context.Context) ([]models.AgentProfile, error)
	Approve(ctx context.Context, agentID uuid.UUID, actorUserID uuid.UUID) (*AgentDetail, error)
	SetApprovalStatus(ctx context.Context, agentID uuid.UUID, status enums.AgentApprovalStatus) error
	SetActive(ctx context.Context, agentID uuid.UUID, active bool) error
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*AgentDetail, error)
	ClaimEligible(ctx context.Context, userID uuid.UUID) (bool, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService wires the agents service with its dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Get(ctx context.Context, agentID uuid.UUID) (*AgentDetail, error) {
	profile, err := s.load(ctx, s.repo, agentID)
	if err != nil {
		return nil, err
	}
	return &AgentDetail{Profile: profile, Readiness: ComputeReadiness(profile)}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*AgentList, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
	}
	return list, nil
}

func (s *service) ListEligible(ctx context.Context) ([]models.AgentProfile, error) {
	profiles, err := s.repo.ListEligible(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list eligible agents")
	}
	return profiles, nil
}

// Approve is the only gated approval transition: the readiness checklist must
// pass in full.
func (s *service) Approve(ctx context.Context, agentID uuid.UUID, actorUserID uuid.UUID) (*AgentDetail, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}

	var detail *AgentDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := s.load(ctx, repo, agentID)
		if err != nil {
			return err
		}

		readiness := ComputeReadiness(profile)
		if !readiness.Ready {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "agent has not completed the readiness checklist").
				WithDetails(readiness)
		}

		now := time.Now()
		if err := repo.Update(ctx, agentID, map[string]any{
			"approval_status": enums.AgentApprovalApproved,
			"approved_at":     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve agent")
		}

		profile.ApprovalStatus = enums.AgentApprovalApproved
		profile.ApprovedAt = &now
		detail = &AgentDetail{Profile: profile, Readiness: readiness}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAgentApproved,
			AggregateType: enums.AggregateAgent,
			AggregateID:   profile.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorUserID, Role: string(enums.SystemRoleAdmin)},
			Data: payloads.AgentApprovedEvent{
				AgentID:    profile.ID,
				ApprovedAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// SetApprovalStatus moves an agent to pending or blocked unconditionally.
// Approving must go through Approve.
func (s *service) SetApprovalStatus(ctx context.Context, agentID uuid.UUID, status enums.AgentApprovalStatus) error {
	if agentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if status != enums.AgentApprovalPending && status != enums.AgentApprovalBlocked {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be pending or blocked")
	}

	if _, err := s.load(ctx, s.repo, agentID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, agentID, map[string]any{
		"approval_status": status,
		"approved_at":     nil,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update approval status")
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, agentID uuid.UUID, active bool) error {
	if agentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if _, err := s.load(ctx, s.repo, agentID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, agentID, map[string]any{"is_active": active}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update active flag")
	}
	return nil
}

func (s *service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*AgentDetail, error) {
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}

	updates := map[string]any{}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
		// Re-verification is required whenever the number changes.
		updates["phone_verified"] = false
	}
	if input.PhoneVerified != nil {
		updates["phone_verified"] = *input.PhoneVerified
	}
	if input.NIN != nil {
		updates["nin"] = strings.TrimSpace(*input.NIN)
		updates["nin_verified"] = false
	}
	if input.NINVerified != nil {
		updates["nin_verified"] = *input.NINVerified
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.BankVerified != nil {
		updates["bank_verified"] = *input.BankVerified
	}
	if input.ExpoPushToken != nil {
		updates["expo_push_token"] = strings.TrimSpace(*input.ExpoPushToken)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no profile fields provided")
	}

	profile, err := s.load(ctx, s.repo, input.AgentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, input.AgentID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent profile")
	}

	profile, err = s.load(ctx, s.repo, input.AgentID)
	if err != nil {
		return nil, err
	}
	return &AgentDetail{Profile: profile, Readiness: ComputeReadiness(profile)}, nil
}

// ClaimEligible implements the handoff claim gate: approved and active.
func (s *service) ClaimEligible(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent profile")
	}
	return profile.ApprovalStatus == enums.AgentApprovalApproved && profile.IsActive, nil
}

func (s *service) load(ctx context.Context, repo Repository, agentID uuid.UUID) (*models.AgentProfile, error) {
	profile, err := repo.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent profile")
	}
	return profile, nil
}
