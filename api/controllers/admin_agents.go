package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linescout/linescout-backend/api/responses"
	"github.com/linescout/linescout-backend/api/validators"
	"github.com/linescout/linescout-backend/internal/agents"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
)

type approvalStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type updateAgentProfileRequest struct {
	Phone         *string `json:"phone,omitempty"`
	PhoneVerified *bool   `json:"phone_verified,omitempty"`
	NIN           *string `json:"nin,omitempty"`
	NINVerified   *bool   `json:"nin_verified,omitempty"`
	Address       *string `json:"address,omitempty"`
	BankVerified  *bool   `json:"bank_verified,omitempty"`
	ExpoPushToken *string `json:"expo_push_token,omitempty"`
}

// AdminListAgents pages through agent profiles for the back office.
func AdminListAgents(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agents service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminAgentDetail returns a profile with its readiness checklist.
func AdminAgentDetail(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agents service unavailable"))
			return
		}

		agentID, err := validators.ParsePathUUID(chi.URLParam(r, "agentID"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminApproveAgent approves an agent once every readiness check passes.
func AdminApproveAgent(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agents service unavailable"))
			return
		}

		agentID, err := validators.ParsePathUUID(chi.URLParam(r, "agentID"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Approve(r.Context(), agentID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminSetAgentApprovalStatus moves an agent to any approval state directly.
func AdminSetAgentApprovalStatus(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agents service unavailable"))
			return
		}

		agentID, err := validators.ParsePathUUID(chi.URLParam(r, "agentID"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body approvalStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseAgentApprovalStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid approval status"))
			return
		}

		if err := svc.SetApprovalStatus(r.Context(), agentID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

// AdminSetAgentActive toggles an agent's active flag.
func AdminSetAgentActive(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agents service unavailable"))
			return
		}

		agentID, err := validators.ParsePathUUID(chi.URLParam(r, "agentID"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), agentID, *body.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": *body.Active})
	}
}

// AdminUpdateAgentProfile applies back-office edits to an agent profile.
func AdminUpdateAgentProfile(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agents service unavailable"))
			return
		}

		agentID, err := validators.ParsePathUUID(chi.URLParam(r, "agentID"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAgentProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.UpdateProfile(r.Context(), agents.UpdateProfileInput{
			AgentID:       agentID,
			Phone:         body.Phone,
			PhoneVerified: body.PhoneVerified,
			NIN:           body.NIN,
			NINVerified:   body.NINVerified,
			Address:       body.Address,
			BankVerified:  body.BankVerified,
			ExpoPushToken: body.ExpoPushToken,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
