package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdesk/pkg/access"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/validator"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresAt time.Time     `json:"expires_at"`
	Principal principalView `json:"principal"`
}

type principalView struct {
	ID        uuid.UUID      `json:"id"`
	Kind      principal.Kind `json:"kind"`
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	AccountID uuid.UUID      `json:"account_id"`
}

func newPrincipalView(p principal.Principal) principalView {
	return principalView{
		ID:        p.ID(),
		Kind:      p.Kind,
		Email:     p.Email(),
		Role:      p.Role(),
		AccountID: p.AccountID(),
	}
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.errs.respond(w, r, errors.Join(errBadRequest, err))
		return
	}
	if err := validator.Apply(
		validator.RequiredString("email", req.Email),
		validator.RequiredString("password", req.Password),
	); err != nil {
		a.errs.respond(w, r, errors.Join(errBadRequest, err))
		return
	}

	p, err := a.Principals.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}

	token, expiresAt, err := a.Tokens.IssueWithExpiry(p)
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}

	a.log.InfoContext(r.Context(), "principal logged in",
		logger.PrincipalID(p.ID()),
		logger.PrincipalKind(p.Kind),
	)
	respond(w, r, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		Principal: newPrincipalView(p),
	})
}

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		a.errs.respond(w, r, access.ErrUnauthenticated)
		return
	}
	respond(w, r, http.StatusOK, newPrincipalView(p))
}
