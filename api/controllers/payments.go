package controllers

import (
	"net/http"

	"github.com/linescout/linescout-backend/api/responses"
	"github.com/linescout/linescout-backend/api/validators"
	"github.com/linescout/linescout-backend/internal/payments"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
)

type verifyPaymentRequest struct {
	Reference string `json:"reference" validate:"required,min=3"`
	Purpose   string `json:"purpose,omitempty"`
}

// PaymentVerify confirms a Paystack reference and opens the funded handoff.
func PaymentVerify(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.VerifyInput{UserID: userID, Reference: body.Reference}
		if body.Purpose != "" {
			purpose, err := enums.ParsePaymentPurpose(body.Purpose)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purpose"))
				return
			}
			input.Purpose = purpose
		}

		result, err := svc.Verify(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.AlreadyProcessed {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
