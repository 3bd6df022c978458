package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/bizdesk/pkg/access"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
)

func (a *api) getSubscription(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	state, err := a.Subscriptions.Evaluate(r.Context(), p.AccountID())
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, state)
}

func (a *api) finishTrial(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	state, err := a.Subscriptions.FinishTrial(r.Context(), p.AccountID())
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, state)
}

type capabilityView struct {
	Capability string `json:"capability"`
	Allowed    bool   `json:"allowed"`
	Premium    bool   `json:"premium"`
}

// checkCapability answers 204 when the caller may use the capability and 403 otherwise.
// With ?explain=1 it always answers 200 with the verdict in the body.
func (a *api) checkCapability(w http.ResponseWriter, r *http.Request) {
	capability := chi.URLParam(r, "capability")
	p, ok := principal.FromContext(r.Context())
	if !ok {
		a.errs.respond(w, r, access.ErrUnauthenticated)
		return
	}

	err := a.Gate.Authorize(r.Context(), p, capability)
	if r.URL.Query().Get("explain") == "1" {
		respond(w, r, http.StatusOK, capabilityView{
			Capability: capability,
			Allowed:    err == nil,
			Premium:    a.Gate.IsPremium(capability),
		})
		return
	}
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
