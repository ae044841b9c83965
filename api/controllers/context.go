package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/centavohq/centavo-backend/api/middleware"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
)

// identityFromRequest extracts the authenticated tenant and user. Auth
// middleware guarantees both are present on protected routes; anything else is
// a wiring bug.
func identityFromRequest(r *http.Request) (tenantID, userID uuid.UUID, err error) {
	rawTenant := middleware.TenantIDFromContext(r.Context())
	if rawTenant == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant context missing")
	}
	tenantID, err = uuid.Parse(rawTenant)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid tenant id")
	}

	if rawUser := middleware.UserIDFromContext(r.Context()); rawUser != "" {
		userID, err = uuid.Parse(rawUser)
		if err != nil {
			return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
	}
	return tenantID, userID, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
