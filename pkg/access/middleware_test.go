package access_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdesk/pkg/access"
	"github.com/dmitrymomot/bizdesk/pkg/jwt"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
)

func newHandler(t *testing.T, w *world, capability string) (http.Handler, *jwt.Service) {
	t.Helper()

	tokens, err := jwt.New([]byte("0123456789abcdef0123456789abcdef"), jwt.WithClock(w.clock))
	require.NoError(t, err)
	resolver := principal.NewResolver(w.store, w.store)

	final := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		p, ok := principal.FromContext(r.Context())
		if !ok {
			http.Error(rw, "no principal", http.StatusInternalServerError)
			return
		}
		rw.Header().Set("X-Principal", p.ID().String())
		rw.WriteHeader(http.StatusNoContent)
	})

	h := jwt.Middleware(tokens)(access.Authenticate(resolver)(w.gate.Require(capability)(final)))
	return h, tokens
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_Chain(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	h, tokens := newHandler(t, w, "sales.create")

	tests := []struct {
		name     string
		p        principal.Principal
		wantCode int
	}{
		{name: "owner", p: w.owner, wantCode: http.StatusNoContent},
		{name: "employee", p: w.manager, wantCode: http.StatusNoContent},
		{name: "role without capability", p: w.admin, wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token, err := tokens.Issue(tt.p)
			require.NoError(t, err)

			rec := serve(h, token)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusNoContent {
				assert.Equal(t, tt.p.ID().String(), rec.Header().Get("X-Principal"))
			}
		})
	}
}

func TestMiddleware_TokenKindIsHonoured(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	h, tokens := newHandler(t, w, "sales.create")

	// an employee token for an email that only exists as an owner
	ghost := principal.FromEmployee(&principal.Employee{ID: uuid.New(), Email: w.owner.Email(), Role: "manager"})
	token, err := tokens.Issue(ghost)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(h, token).Code)
}

func TestMiddleware_StalePrincipalID(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	h, tokens := newHandler(t, w, "sales.create")

	impostor := principal.FromOwner(&principal.Owner{ID: uuid.New(), Email: w.owner.Email(), Role: "owner"})
	token, err := tokens.Issue(impostor)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(h, token).Code)
}

func TestMiddleware_MissingClaims(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	resolver := principal.NewResolver(w.store, w.store)

	var got error
	h := access.Authenticate(resolver, access.WithErrorHandler(func(rw http.ResponseWriter, _ *http.Request, err error) {
		got = err
		rw.WriteHeader(http.StatusTeapot)
	}))(http.NotFoundHandler())

	rec := serve(h, "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, access.ErrUnauthenticated)
}

func TestRequire_WithoutPrincipal(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	rec := serve(w.gate.Require("sales.create")(http.NotFoundHandler()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
