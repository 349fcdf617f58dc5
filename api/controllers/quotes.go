package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linescout/linescout-backend/api/responses"
	"github.com/linescout/linescout-backend/api/validators"
	"github.com/linescout/linescout-backend/internal/quotes"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
)

type createQuoteRequest struct {
	TotalDueKobo int64   `json:"total_due_kobo" validate:"required,min=1"`
	Currency     string  `json:"currency,omitempty"`
	Purpose      string  `json:"purpose" validate:"required"`
	Note         *string `json:"note,omitempty"`
}

// HandoffQuoteCreate records a quote for a claimed handoff.
func HandoffQuoteCreate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
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

		var body createQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purpose, err := enums.ParsePaymentPurpose(body.Purpose)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purpose"))
			return
		}

		currency := enums.CurrencyNGN
		if body.Currency != "" {
			currency, err = enums.ParseCurrency(body.Currency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
		}

		quote, err := svc.Create(r.Context(), quotes.CreateQuoteInput{
			HandoffID:    handoffID,
			AgentID:      agentID,
			TotalDueKobo: body.TotalDueKobo,
			Currency:     currency,
			Purpose:      purpose,
			Note:         body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// HandoffQuotes lists all quotes recorded against a handoff.
func HandoffQuotes(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByHandoff(r.Context(), handoffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
