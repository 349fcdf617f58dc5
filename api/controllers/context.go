package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/api/middleware"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return id, nil
}

func actorFromRequest(r *http.Request) (handoffs.Actor, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return handoffs.Actor{}, err
	}
	role, err := enums.ParseSystemRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return handoffs.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return handoffs.Actor{UserID: userID, Role: role}, nil
}
