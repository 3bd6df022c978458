package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdesk/internal/api"
	"github.com/dmitrymomot/bizdesk/internal/store/memory"
	"github.com/dmitrymomot/bizdesk/pkg/access"
	"github.com/dmitrymomot/bizdesk/pkg/clock"
	"github.com/dmitrymomot/bizdesk/pkg/httpserver"
	"github.com/dmitrymomot/bizdesk/pkg/jwt"
	"github.com/dmitrymomot/bizdesk/pkg/metrics"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/bizdesk/pkg/rbac"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

const password = "correct horse battery"

var start = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type envelope[T any] struct {
	Data  T                `json:"data"`
	Error *api.ErrorDetail `json:"error"`
}

type screenshots struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func (s *screenshots) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[key] = data
	return key, nil
}

func (s *screenshots) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, ref)
	return nil
}

type world struct {
	clock       *clock.Mock
	store       *memory.Store
	screenshots *screenshots
	handler     http.Handler

	owner    *principal.Owner
	admin    *principal.Owner
	manager  *principal.Employee
	stranger *principal.Owner
}

type worldOption func(*world, *api.Deps)

func newWorld(t *testing.T, opts ...worldOption) *world {
	t.Helper()
	ctx := context.Background()

	w := &world{
		clock:       clock.NewMock(start),
		store:       memory.New(),
		screenshots: &screenshots{},
	}

	hash, err := principal.HashPassword(password)
	require.NoError(t, err)

	w.owner = &principal.Owner{ID: uuid.New(), Email: "owner@shop.kz", PasswordHash: hash, Role: "owner"}
	w.admin = &principal.Owner{ID: uuid.New(), Email: "admin@bizdesk.kz", PasswordHash: hash, Role: "admin"}
	w.stranger = &principal.Owner{ID: uuid.New(), Email: "other@shop.kz", PasswordHash: hash, Role: "owner"}
	for _, o := range []*principal.Owner{w.owner, w.admin, w.stranger} {
		require.NoError(t, w.store.CreateOwner(ctx, o, start))
	}
	w.manager = &principal.Employee{ID: uuid.New(), OwnerID: w.owner.ID, Email: "manager@shop.kz", PasswordHash: hash, Role: "manager"}
	require.NoError(t, w.store.CreateEmployee(ctx, w.manager))

	roles, err := rbac.NewAuthorizer(ctx, rbac.DefaultRoles())
	require.NoError(t, err)
	subs := subscription.NewService(w.store, subscription.WithClock(w.clock))
	tokens, err := jwt.New([]byte("0123456789abcdef0123456789abcdef"), jwt.WithClock(w.clock))
	require.NoError(t, err)
	limiter, err := ratelimiter.New(ratelimiter.Config{Capacity: 100, RefillRate: 1, RefillInterval: time.Minute}, ratelimiter.WithClock(w.clock))
	require.NoError(t, err)

	deps := api.Deps{
		Principals:    principal.NewResolver(w.store, w.store),
		Tokens:        tokens,
		Gate:          access.NewGate(roles, subs),
		Subscriptions: subs,
		Ledger:        payment.NewLedger(w.store, payment.WithClock(w.clock), payment.WithScreenshots(w.screenshots)),
		LoginLimiter:  limiter,
		Metrics:       metrics.New(),
		ScreenshotURL: func(ref string) string { return "https://cdn.bizdesk.kz/" + ref },
	}
	for _, opt := range opts {
		opt(w, &deps)
	}
	w.handler = api.NewRouter(deps)
	return w
}

func (w *world) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	w.handler.ServeHTTP(rec, req)
	return rec
}

func (w *world) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return w.do(t, method, path, token, body, "application/json")
}

func (w *world) login(t *testing.T, email string) string {
	t.Helper()
	rec := w.doJSON(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res envelope[struct {
		Token string `json:"token"`
	}]
	decode(t, rec, &res)
	require.NotEmpty(t, res.Data.Token)
	return res.Data.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res envelope[json.RawMessage]
	decode(t, rec, &res)
	require.NotNil(t, res.Error, rec.Body.String())
	return res.Error.Code
}

type paymentBody struct {
	ID            uuid.UUID         `json:"id"`
	AccountID     uuid.UUID         `json:"account_id"`
	SubmittedBy   uuid.UUID         `json:"submitted_by"`
	Plan          subscription.Plan `json:"plan"`
	Status        payment.Status    `json:"status"`
	AmountPaid    string            `json:"amount_paid"`
	ScreenshotRef string            `json:"screenshot_ref"`
	ScreenshotURL string            `json:"screenshot_url"`
	AdminComment  string            `json:"admin_comment"`
}

func (w *world) submitJSON(t *testing.T, token string, plan subscription.Plan) paymentBody {
	t.Helper()
	rec := w.doJSON(t, http.MethodPost, "/v1/payments", token, map[string]string{
		"sender_name": "Dana",
		"amount_paid": "4990",
		"plan":        string(plan),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res envelope[paymentBody]
	decode(t, rec, &res)
	return res.Data
}

func TestNewRouter_RequiresDeps(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { api.NewRouter(api.Deps{}) })
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("owner", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		rec := w.doJSON(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": " Owner@Shop.kz ", "password": password})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res envelope[struct {
			Token     string    `json:"token"`
			TokenType string    `json:"token_type"`
			ExpiresAt time.Time `json:"expires_at"`
			Principal struct {
				ID        uuid.UUID      `json:"id"`
				Kind      principal.Kind `json:"kind"`
				Role      string         `json:"role"`
				AccountID uuid.UUID      `json:"account_id"`
			} `json:"principal"`
		}]
		decode(t, rec, &res)
		assert.NotEmpty(t, res.Data.Token)
		assert.Equal(t, "Bearer", res.Data.TokenType)
		assert.True(t, start.Add(jwt.DefaultTTL).Equal(res.Data.ExpiresAt))
		assert.Equal(t, w.owner.ID, res.Data.Principal.ID)
		assert.Equal(t, principal.KindUser, res.Data.Principal.Kind)
		assert.Equal(t, w.owner.ID, res.Data.Principal.AccountID)
	})

	t.Run("employee acts for the owner account", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		rec := w.do(t, http.MethodGet, "/v1/me", w.login(t, w.manager.Email), nil, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res envelope[struct {
			ID        uuid.UUID      `json:"id"`
			Kind      principal.Kind `json:"kind"`
			Role      string         `json:"role"`
			AccountID uuid.UUID      `json:"account_id"`
		}]
		decode(t, rec, &res)
		assert.Equal(t, w.manager.ID, res.Data.ID)
		assert.Equal(t, principal.KindEmployee, res.Data.Kind)
		assert.Equal(t, "manager", res.Data.Role)
		assert.Equal(t, w.owner.ID, res.Data.AccountID)
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tests := []struct {
			name   string
			body   string
			status int
			code   string
		}{
			{name: "wrong password", body: `{"email":"owner@shop.kz","password":"nope"}`, status: http.StatusUnauthorized, code: "invalid_credentials"},
			{name: "unknown email", body: `{"email":"ghost@shop.kz","password":"nope"}`, status: http.StatusUnauthorized, code: "invalid_credentials"},
			{name: "malformed json", body: `{"email":`, status: http.StatusBadRequest, code: "bad_request"},
			{name: "missing password", body: `{"email":"owner@shop.kz"}`, status: http.StatusBadRequest, code: "bad_request"},
		}
		for _, tt := range tests {
			rec := w.do(t, http.MethodPost, "/v1/auth/login", "", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, rec.Code, tt.name)
			assert.Equal(t, tt.code, errorCode(t, rec), tt.name)
		}
	})

	t.Run("rate limited per client", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, func(w *world, d *api.Deps) {
			l, err := ratelimiter.New(ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute}, ratelimiter.WithClock(w.clock))
			require.NoError(t, err)
			d.LoginLimiter = l
		})

		body := `{"email":"owner@shop.kz","password":"nope"}`
		for range 2 {
			rec := w.do(t, http.MethodPost, "/v1/auth/login", "", strings.NewReader(body), "application/json")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
		rec := w.do(t, http.MethodPost, "/v1/auth/login", "", strings.NewReader(body), "application/json")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "too_many_requests", errorCode(t, rec))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})
}

func TestAuthentication(t *testing.T) {
	t.Parallel()

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		rec := w.do(t, http.MethodGet, "/v1/me", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		rec := w.do(t, http.MethodGet, "/v1/me", "not-a-jwt", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", errorCode(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		token := w.login(t, w.owner.Email)
		w.clock.Advance(jwt.DefaultTTL + time.Minute)

		rec := w.do(t, http.MethodGet, "/v1/me", token, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token_expired", errorCode(t, rec))
	})
}

func TestSubscriptionRoutes(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	token := w.login(t, w.owner.Email)

	rec := w.do(t, http.MethodGet, "/v1/subscription", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state envelope[subscription.State]
	decode(t, rec, &state)
	assert.Equal(t, subscription.PlanBasic, state.Data.Plan)
	assert.True(t, state.Data.IsInFreeTrial)
	assert.Equal(t, 14, state.Data.TrialDaysRemaining)

	rec = w.do(t, http.MethodPost, "/v1/subscription/finish-trial", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &state)
	assert.False(t, state.Data.IsInFreeTrial)
	assert.True(t, state.Data.IsAllowedPremium)

	managerToken := w.login(t, w.manager.Email)
	rec = w.do(t, http.MethodGet, "/v1/subscription", managerToken, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))
}

func TestPaymentFlow(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ownerToken := w.login(t, w.owner.Email)
	adminToken := w.login(t, w.admin.Email)

	submitted := w.submitJSON(t, ownerToken, subscription.PlanProWeekly)
	assert.Equal(t, payment.StatusPending, submitted.Status)
	assert.Equal(t, w.owner.ID, submitted.AccountID)
	assert.Equal(t, w.owner.ID, submitted.SubmittedBy)
	assert.Equal(t, "4990", submitted.AmountPaid)

	rec := w.do(t, http.MethodGet, "/v1/admin/payments", ownerToken, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	rec = w.do(t, http.MethodGet, "/v1/admin/payments", adminToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pending envelope[[]paymentBody]
	decode(t, rec, &pending)
	require.Len(t, pending.Data, 1)
	assert.Equal(t, submitted.ID, pending.Data[0].ID)

	decisionPath := "/v1/admin/payments/" + submitted.ID.String() + "/decision"
	rec = w.doJSON(t, http.MethodPost, decisionPath, adminToken, map[string]string{"decision": "APPROVE", "admin_comment": "received"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var decided envelope[paymentBody]
	decode(t, rec, &decided)
	assert.Equal(t, payment.StatusApproved, decided.Data.Status)
	assert.Equal(t, "received", decided.Data.AdminComment)

	rec = w.doJSON(t, http.MethodPost, decisionPath, adminToken, map[string]string{"decision": "reject"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_state_transition", errorCode(t, rec))

	rec = w.do(t, http.MethodGet, "/v1/subscription", ownerToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state envelope[subscription.State]
	decode(t, rec, &state)
	assert.Equal(t, subscription.PlanProWeekly, state.Data.Plan)
	assert.True(t, state.Data.IsActive)
	assert.False(t, state.Data.IsInFreeTrial)
	assert.Equal(t, 7, state.Data.RemainingDays)

	rec = w.do(t, http.MethodGet, "/v1/payments", ownerToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine envelope[[]paymentBody]
	decode(t, rec, &mine)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, payment.StatusApproved, mine.Data[0].Status)
}

func TestSubmitPayment(t *testing.T) {
	t.Parallel()

	t.Run("multipart with screenshot", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		token := w.login(t, w.owner.Email)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("sender_name", "Dana"))
		require.NoError(t, mw.WriteField("amount_paid", "9990.50"))
		require.NoError(t, mw.WriteField("plan", "pro_monthly"))
		part, err := mw.CreateFormFile("screenshot", "Receipt.PNG")
		require.NoError(t, err)
		png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)
		_, err = part.Write(png)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		rec := w.do(t, http.MethodPost, "/v1/payments", token, &body, mw.FormDataContentType())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res envelope[paymentBody]
		decode(t, rec, &res)

		wantRef := "payments/" + w.owner.ID.String() + "/" + res.Data.ID.String() + ".png"
		assert.Equal(t, wantRef, res.Data.ScreenshotRef)
		assert.Equal(t, "https://cdn.bizdesk.kz/"+wantRef, res.Data.ScreenshotURL)
		assert.Equal(t, subscription.PlanProMonthly, res.Data.Plan)
		assert.Equal(t, png, w.screenshots.uploads[wantRef])
	})

	t.Run("screenshot without storage", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, func(w *world, d *api.Deps) {
			d.Ledger = payment.NewLedger(w.store, payment.WithClock(w.clock))
		})
		token := w.login(t, w.owner.Email)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("sender_name", "Dana"))
		require.NoError(t, mw.WriteField("amount_paid", "4990"))
		require.NoError(t, mw.WriteField("plan", "pro_weekly"))
		part, err := mw.CreateFormFile("screenshot", "receipt.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		rec := w.do(t, http.MethodPost, "/v1/payments", token, &body, mw.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "screenshots_disabled", errorCode(t, rec))
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		token := w.login(t, w.owner.Email)

		tests := []struct {
			name  string
			body  map[string]string
			field string
		}{
			{name: "amount not a number", body: map[string]string{"sender_name": "Dana", "amount_paid": "lots", "plan": "pro_weekly"}, field: "amount_paid"},
			{name: "amount not positive", body: map[string]string{"sender_name": "Dana", "amount_paid": "0", "plan": "pro_weekly"}, field: "amount_paid"},
			{name: "unknown plan", body: map[string]string{"sender_name": "Dana", "amount_paid": "10", "plan": "PRO_YEARLY"}, field: "plan"},
			{name: "basic is not for sale", body: map[string]string{"sender_name": "Dana", "amount_paid": "10", "plan": "basic"}, field: "plan"},
			{name: "sender required", body: map[string]string{"amount_paid": "10", "plan": "pro_weekly"}, field: "sender_name"},
		}
		for _, tt := range tests {
			rec := w.doJSON(t, http.MethodPost, "/v1/payments", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, tt.name)

			var res envelope[json.RawMessage]
			decode(t, rec, &res)
			require.NotNil(t, res.Error, tt.name)
			assert.Equal(t, "invalid_request", res.Error.Code, tt.name)
			assert.Contains(t, res.Error.Details, tt.field, tt.name)
		}
	})

	t.Run("plan names in any case", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		token := w.login(t, w.owner.Email)

		for plan, want := range map[string]subscription.Plan{
			"PRO_MONTHLY":  subscription.PlanProMonthly,
			" Pro_Weekly ": subscription.PlanProWeekly,
		} {
			rec := w.doJSON(t, http.MethodPost, "/v1/payments", token, map[string]string{
				"sender_name": "Dana", "amount_paid": "9000", "plan": plan,
			})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			var res envelope[paymentBody]
			decode(t, rec, &res)
			assert.Equal(t, want, res.Data.Plan, plan)
			assert.Equal(t, payment.StatusPending, res.Data.Status, plan)
		}
	})

	t.Run("employees cannot submit", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		rec := w.doJSON(t, http.MethodPost, "/v1/payments", w.login(t, w.manager.Email), map[string]string{
			"sender_name": "Dana", "amount_paid": "10", "plan": "pro_weekly",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGetPayment(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ownerToken := w.login(t, w.owner.Email)
	submitted := w.submitJSON(t, ownerToken, subscription.PlanProWeekly)
	path := "/v1/payments/" + submitted.ID.String()

	tests := []struct {
		name   string
		token  string
		path   string
		status int
		code   string
	}{
		{name: "owner", token: ownerToken, path: path, status: http.StatusOK},
		{name: "admin", token: w.login(t, w.admin.Email), path: path, status: http.StatusOK},
		{name: "other account", token: w.login(t, w.stranger.Email), path: path, status: http.StatusNotFound, code: "not_found"},
		{name: "unknown id", token: ownerToken, path: "/v1/payments/" + uuid.NewString(), status: http.StatusNotFound, code: "not_found"},
		{name: "malformed id", token: ownerToken, path: "/v1/payments/42", status: http.StatusBadRequest, code: "invalid_request"},
	}
	for _, tt := range tests {
		rec := w.do(t, http.MethodGet, tt.path, tt.token, nil, "")
		assert.Equal(t, tt.status, rec.Code, tt.name)
		if tt.code != "" {
			assert.Equal(t, tt.code, errorCode(t, rec), tt.name)
		}
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ownerToken := w.login(t, w.owner.Email)
	adminToken := w.login(t, w.admin.Email)
	managerToken := w.login(t, w.manager.Email)

	check := func(token, capability string) *httptest.ResponseRecorder {
		return w.do(t, http.MethodGet, "/v1/capabilities/"+capability, token, nil, "")
	}

	assert.Equal(t, http.StatusNoContent, check(ownerToken, "reports.advanced").Code)
	assert.Equal(t, http.StatusNoContent, check(managerToken, "sales.create").Code)

	rec := check(managerToken, "reports.advanced")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	submitted := w.submitJSON(t, ownerToken, subscription.PlanProWeekly)
	rec = w.doJSON(t, http.MethodPost, "/v1/admin/payments/"+submitted.ID.String()+"/decision", adminToken, map[string]string{"decision": "approve"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	w.clock.Advance(8 * 24 * time.Hour)
	ownerToken = w.login(t, w.owner.Email)

	rec = check(ownerToken, "reports.advanced")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "premium_required", errorCode(t, rec))
	assert.Equal(t, http.StatusNoContent, check(ownerToken, "reports.basic").Code)

	rec = w.do(t, http.MethodGet, "/v1/capabilities/reports.advanced?explain=1", ownerToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var verdict envelope[struct {
		Capability string `json:"capability"`
		Allowed    bool   `json:"allowed"`
		Premium    bool   `json:"premium"`
	}]
	decode(t, rec, &verdict)
	assert.Equal(t, "reports.advanced", verdict.Data.Capability)
	assert.False(t, verdict.Data.Allowed)
	assert.True(t, verdict.Data.Premium)
}

func TestOperationalRoutes(t *testing.T) {
	t.Parallel()

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		rec := w.do(t, http.MethodGet, "/v1/nope", "", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var res envelope[json.RawMessage]
		decode(t, rec, &res)
		require.NotNil(t, res.Error)
		assert.Equal(t, "route_not_found", res.Error.Code)
		assert.Equal(t, rec.Header().Get("X-Request-ID"), res.Error.RequestID)
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		rec := w.do(t, http.MethodDelete, "/v1/auth/login", "", nil, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "method_not_allowed", errorCode(t, rec))
	})

	t.Run("health", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t, func(_ *world, d *api.Deps) {
			d.HealthChecks = []httpserver.Check{
				{Name: "postgres", Fn: func(context.Context) error { return nil }},
				{Name: "redis", Fn: func(context.Context) error { return errors.New("connection refused") }},
			}
		})
		assert.Equal(t, http.StatusServiceUnavailable, w.do(t, http.MethodGet, "/healthz", "", nil, "").Code)
		assert.Equal(t, http.StatusOK, w.do(t, http.MethodGet, "/livez", "", nil, "").Code)
	})

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		w.do(t, http.MethodGet, "/livez", "", nil, "")

		rec := w.do(t, http.MethodGet, "/metrics", "", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `bizdesk_http_requests_total{code="200",method="GET",route="/livez"} 1`)
	})
}
