package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linescout/linescout-backend/api/responses"
	"github.com/linescout/linescout-backend/api/validators"
	"github.com/linescout/linescout-backend/internal/ledger"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
)

type recordPaymentRequest struct {
	AmountKobo   int64   `json:"amount_kobo" validate:"required,min=1"`
	Currency     string  `json:"currency,omitempty"`
	Purpose      string  `json:"purpose" validate:"required"`
	Note         *string `json:"note,omitempty"`
	TotalDueKobo *int64  `json:"total_due_kobo,omitempty"`
}

type recordPaymentResponse struct {
	Payment any             `json:"payment"`
	Summary *ledger.Summary `json:"summary"`
}

// HandoffRecordPayment appends a payment entry to a handoff's ledger.
func HandoffRecordPayment(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
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

		var body recordPaymentRequest
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

		recordedBy := actor.UserID
		payment, summary, err := svc.RecordPayment(r.Context(), ledger.RecordPaymentInput{
			HandoffID:    handoffID,
			AmountKobo:   body.AmountKobo,
			Currency:     currency,
			Purpose:      purpose,
			Note:         body.Note,
			RecordedBy:   &recordedBy,
			TotalDueKobo: body.TotalDueKobo,
			Actor:        actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, recordPaymentResponse{Payment: payment, Summary: summary})
	}
}

// HandoffLedger returns the aggregate payment summary for a handoff.
func HandoffLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), handoffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// HandoffLedgerVerify recomputes the summary from the immutable payment rows.
func HandoffLedgerVerify(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		handoffID, err := validators.ParsePathUUID(chi.URLParam(r, "handoffID"), "handoff id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyAgainstEntries(r.Context(), handoffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
