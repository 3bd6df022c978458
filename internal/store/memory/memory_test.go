package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdesk/internal/store"
	"github.com/dmitrymomot/bizdesk/internal/store/memory"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

var now = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func seedOwner(t *testing.T, s *memory.Store, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, s.CreateOwner(context.Background(), &principal.Owner{
		ID: id, Email: email, Role: principal.RoleOwner,
	}, now))
	return id
}

func TestStore_CreateOwner(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()
	id := seedOwner(t, s, " Owner@Shop.kz ")

	o, err := s.GetOwnerByEmail(ctx, "owner@shop.kz")
	require.NoError(t, err)
	assert.Equal(t, id, o.ID)
	assert.Equal(t, now, o.CreatedAt)

	info, err := s.GetInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, subscription.PlanBasic, info.Plan)
	assert.Equal(t, now, info.FreeTrialStartedAt)
	assert.False(t, info.FinishedFreeTrial)

	err = s.CreateOwner(ctx, &principal.Owner{ID: uuid.New(), Email: "owner@shop.kz"}, now)
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	err = s.CreateOwner(ctx, &principal.Owner{ID: id, Email: "other@shop.kz"}, now)
	assert.ErrorIs(t, err, store.ErrDuplicateID)
}

func TestStore_CreateEmployee(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()
	ownerID := seedOwner(t, s, "owner@shop.kz")

	err := s.CreateEmployee(ctx, &principal.Employee{ID: uuid.New(), OwnerID: uuid.New(), Email: "a@shop.kz"})
	assert.ErrorIs(t, err, store.ErrOwnerMissing)

	require.NoError(t, s.CreateEmployee(ctx, &principal.Employee{ID: uuid.New(), OwnerID: ownerID, Email: "A@shop.kz"}))
	err = s.CreateEmployee(ctx, &principal.Employee{ID: uuid.New(), OwnerID: ownerID, Email: "a@shop.kz"})
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	e, err := s.GetEmployeeByEmail(ctx, "a@shop.kz")
	require.NoError(t, err)
	assert.Equal(t, ownerID, e.OwnerID)

	_, err = s.GetEmployeeByEmail(ctx, "b@shop.kz")
	assert.ErrorIs(t, err, principal.ErrPrincipalNotFound)
}

func TestStore_SaveInfo(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()
	id := seedOwner(t, s, "owner@shop.kz")

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()
		info := subscription.NewInfo(uuid.New(), now)
		assert.ErrorIs(t, s.SaveInfo(ctx, &info), subscription.ErrAccountNotFound)
	})

	t.Run("trial start is immutable", func(t *testing.T) {
		t.Parallel()
		info := subscription.NewInfo(id, now.Add(time.Hour))
		assert.ErrorIs(t, s.SaveInfo(ctx, &info), subscription.ErrTrialAlreadyStarted)
	})
}

func TestStore_FinishedTrialIsSticky(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()
	id := seedOwner(t, s, "owner@shop.kz")

	info, err := s.GetInfo(ctx, id)
	require.NoError(t, err)
	finished := subscription.FinishTrial(*info, now)
	require.NoError(t, s.SaveInfo(ctx, &finished))

	reopened := finished
	reopened.FinishedFreeTrial = false
	require.NoError(t, s.SaveInfo(ctx, &reopened))

	got, err := s.GetInfo(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.FinishedFreeTrial)
}

func TestStore_FailNextInfoSave(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()
	id := seedOwner(t, s, "owner@shop.kz")
	boom := errors.New("disk full")

	s.FailNextInfoSave(boom)
	info, err := s.GetInfo(ctx, id)
	require.NoError(t, err)
	assert.ErrorIs(t, s.SaveInfo(ctx, info), boom)
	assert.NoError(t, s.SaveInfo(ctx, info))
}

func TestStore_ListExpiring(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	expiring := func(email string, in time.Duration) uuid.UUID {
		id := seedOwner(t, s, email)
		info, err := s.GetInfo(ctx, id)
		require.NoError(t, err)
		exp := now.Add(in)
		info.Plan = subscription.PlanProWeekly
		info.SubscribedAt = &now
		info.ExpirationDate = &exp
		info.FinishedFreeTrial = true
		require.NoError(t, s.SaveInfo(ctx, info))
		return id
	}

	later := expiring("later@shop.kz", 72*time.Hour+time.Hour)
	sooner := expiring("sooner@shop.kz", 72*time.Hour)
	expiring("outside@shop.kz", 5*24*time.Hour)
	seedOwner(t, s, "basic@shop.kz")

	got, err := s.ListExpiring(ctx, now.Add(72*time.Hour), now.Add(96*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sooner, got[0].AccountID)
	assert.Equal(t, later, got[1].AccountID)
}

func TestStore_Requests(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()
	account := seedOwner(t, s, "owner@shop.kz")

	newRequest := func(at time.Time) payment.Request {
		req := payment.Request{
			ID:          uuid.New(),
			AccountID:   account,
			SenderName:  "Sender",
			AmountPaid:  decimal.NewFromInt(5000),
			Plan:        subscription.PlanProWeekly,
			Status:      payment.StatusPending,
			SubmittedAt: at,
		}
		require.NoError(t, s.CreateRequest(ctx, &req))
		return req
	}

	first := newRequest(now)
	second := newRequest(now.Add(time.Minute))

	orphan := payment.Request{ID: uuid.New(), AccountID: uuid.New(), Status: payment.StatusPending}
	assert.ErrorIs(t, s.CreateRequest(ctx, &orphan), subscription.ErrAccountNotFound)
	assert.ErrorIs(t, s.CreateRequest(ctx, &first), store.ErrDuplicateID)

	byAccount, err := s.ListRequestsByAccount(ctx, account)
	require.NoError(t, err)
	require.Len(t, byAccount, 2)
	assert.Equal(t, second.ID, byAccount[0].ID)

	pending, err := s.ListRequestsByStatus(ctx, payment.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)

	_, err = s.GetRequest(ctx, uuid.New())
	assert.ErrorIs(t, err, payment.ErrRequestNotFound)
}

func TestStore_DecideRequest(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()
	account := seedOwner(t, s, "owner@shop.kz")

	req := payment.Request{
		ID:          uuid.New(),
		AccountID:   account,
		AmountPaid:  decimal.NewFromInt(9000),
		Plan:        subscription.PlanProMonthly,
		Status:      payment.StatusPending,
		SubmittedAt: now,
	}
	require.NoError(t, s.CreateRequest(ctx, &req))

	t.Run("fn error leaves everything untouched", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.DecideRequest(ctx, req.ID, func(r payment.Request, info subscription.Info) (payment.Request, *subscription.Info, error) {
			return r, nil, boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.GetRequest(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, got.Status)
	})

	t.Run("info save failure keeps the request pending", func(t *testing.T) {
		s.FailNextInfoSave(errors.New("write failed"))
		_, err := s.DecideRequest(ctx, req.ID, func(r payment.Request, info subscription.Info) (payment.Request, *subscription.Info, error) {
			r.Status = payment.StatusApproved
			extended, err := subscription.Extend(info, r.Plan, now)
			return r, &extended, err
		})
		require.Error(t, err)

		got, err := s.GetRequest(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, got.Status)

		info, err := s.GetInfo(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanBasic, info.Plan)
	})

	t.Run("commit", func(t *testing.T) {
		updated, err := s.DecideRequest(ctx, req.ID, func(r payment.Request, info subscription.Info) (payment.Request, *subscription.Info, error) {
			r.Status = payment.StatusApproved
			extended, err := subscription.Extend(info, r.Plan, now)
			return r, &extended, err
		})
		require.NoError(t, err)
		assert.Equal(t, payment.StatusApproved, updated.Status)

		info, err := s.GetInfo(ctx, account)
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanProMonthly, info.Plan)
		require.NotNil(t, info.ExpirationDate)
		assert.Equal(t, now.Add(30*24*time.Hour), *info.ExpirationDate)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := s.DecideRequest(ctx, uuid.New(), func(r payment.Request, info subscription.Info) (payment.Request, *subscription.Info, error) {
			return r, nil, nil
		})
		assert.ErrorIs(t, err, payment.ErrRequestNotFound)
	})
}
