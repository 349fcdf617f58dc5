package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linescout/linescout-backend/api/responses"
	"github.com/linescout/linescout-backend/api/validators"
	"github.com/linescout/linescout-backend/internal/handoffs"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
)

type manufacturerFoundRequest struct {
	ManufacturerName    string  `json:"manufacturer_name" validate:"required,min=2"`
	ManufacturerAddress *string `json:"manufacturer_address,omitempty"`
	ManufacturerContact string  `json:"manufacturer_contact" validate:"required,min=3"`
}

type markPaidRequest struct {
	AdminOverride bool `json:"admin_override,omitempty"`
}

type shipRequest struct {
	Shipper     string `json:"shipper" validate:"required,min=2"`
	TrackingRef string `json:"tracking_ref" validate:"required,min=2"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// HandoffQueue lists pending, unclaimed handoffs for approved agents.
func HandoffQueue(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Queue(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AgentHandoffs lists handoffs claimed by the authenticated agent.
func AgentHandoffs(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		agentID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForAgent(r.Context(), agentID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func HandoffDetail(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handoff, err := svc.Get(r.Context(), handoffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, handoff)
	}
}

// HandoffActions returns the valid next actions for a handoff's current state.
func HandoffActions(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actions, err := svc.Actions(r.Context(), handoffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, actions)
	}
}

// HandoffClaim lets an approved agent take a pending handoff.
func HandoffClaim(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agentID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handoff, err := svc.Claim(r.Context(), handoffs.ClaimInput{HandoffID: handoffID, AgentID: agentID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, handoff)
	}
}

func HandoffManufacturerFound(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body manufacturerFoundRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handoff, err := svc.MarkManufacturerFound(r.Context(), handoffs.ManufacturerFoundInput{
			HandoffID:           handoffID,
			ManufacturerName:    body.ManufacturerName,
			ManufacturerAddress: body.ManufacturerAddress,
			ManufacturerContact: body.ManufacturerContact,
			Actor:               actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, handoff)
	}
}

func HandoffMarkPaid(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body markPaidRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handoff, err := svc.MarkPaid(r.Context(), handoffs.MarkPaidInput{
			HandoffID:     handoffID,
			AdminOverride: body.AdminOverride,
			Actor:         actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, handoff)
	}
}

func HandoffShip(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body shipRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handoff, err := svc.MarkShipped(r.Context(), handoffs.MarkShippedInput{
			HandoffID:   handoffID,
			Shipper:     body.Shipper,
			TrackingRef: body.TrackingRef,
			Actor:       actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, handoff)
	}
}

func HandoffDeliver(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handoff, err := svc.MarkDelivered(r.Context(), handoffs.MarkDeliveredInput{HandoffID: handoffID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, handoff)
	}
}

func HandoffCancel(svc handoffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "handoffs service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handoff, err := svc.Cancel(r.Context(), handoffs.CancelInput{
			HandoffID: handoffID,
			Reason:    body.Reason,
			Actor:     actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, handoff)
	}
}
