package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/api/responses"
	"github.com/linescout/linescout-backend/api/validators"
	"github.com/linescout/linescout-backend/internal/reorders"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
)

type assignReorderRequest struct {
	AgentID   uuid.UUID `json:"agent_id" validate:"required"`
	AdminNote *string   `json:"admin_note,omitempty"`
}

// AdminListReorders pages through reorder requests, optionally by status.
func AdminListReorders(svc reorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reorders service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters reorders.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseReorderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminReorderDetail(svc reorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reorders service unavailable"))
			return
		}

		reorderID, err := validators.ParsePathUUID(chi.URLParam(r, "reorderID"), "reorder id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reorder, err := svc.Get(r.Context(), reorderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reorder)
	}
}

// AdminAssignReorder routes a parked reorder to an approved agent.
func AdminAssignReorder(svc reorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reorders service unavailable"))
			return
		}

		reorderID, err := validators.ParsePathUUID(chi.URLParam(r, "reorderID"), "reorder id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignReorderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reorder, err := svc.Assign(r.Context(), reorders.AssignInput{
			ReorderID:   reorderID,
			AgentID:     body.AgentID,
			AdminNote:   body.AdminNote,
			ActorUserID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reorder)
	}
}

// MyReorders lists the authenticated customer's reorder requests.
func MyReorders(svc reorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reorders service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
