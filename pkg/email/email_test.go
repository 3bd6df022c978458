package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
	"github.com/dmitrymomot/bizdesk/pkg/email"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msg     email.Message
		wantErr bool
	}{
		{name: "html body", msg: email.Message{To: "owner@shop.kz", Subject: "Hi", HTMLBody: "<p>hi</p>"}},
		{name: "text body", msg: email.Message{To: "owner@shop.kz", Subject: "Hi", TextBody: "hi"}},
		{name: "missing recipient", msg: email.Message{Subject: "Hi", HTMLBody: "<p>hi</p>"}, wantErr: true},
		{name: "invalid recipient", msg: email.Message{To: "owner@", Subject: "Hi", HTMLBody: "<p>hi</p>"}, wantErr: true},
		{name: "blank subject", msg: email.Message{To: "owner@shop.kz", Subject: "  ", HTMLBody: "<p>hi</p>"}, wantErr: true},
		{name: "no body", msg: email.Message{To: "owner@shop.kz", Subject: "Hi"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidMessage)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewPostmarkSender(t *testing.T) {
	t.Parallel()

	valid := email.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "noreply@bizdesk.kz",
		SupportEmail:         "support@bizdesk.kz",
	}

	s, err := email.NewPostmarkSender(valid)
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.True(t, valid.Enabled())

	tests := []struct {
		name   string
		mutate func(*email.Config)
		msg    string
	}{
		{name: "server token", mutate: func(c *email.Config) { c.PostmarkServerToken = "" }, msg: "PostmarkServerToken is required"},
		{name: "account token", mutate: func(c *email.Config) { c.PostmarkAccountToken = "" }, msg: "PostmarkAccountToken is required"},
		{name: "sender email", mutate: func(c *email.Config) { c.SenderEmail = "nope" }, msg: "sender_email"},
		{name: "support email", mutate: func(c *email.Config) { c.SupportEmail = "" }, msg: "support_email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			s, err := email.NewPostmarkSender(cfg)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	assert.Panics(t, func() { email.MustNewPostmarkSender(email.Config{}) })
	assert.False(t, email.Config{}.Enabled())
}

func TestPostmarkSender_RejectsInvalidMessage(t *testing.T) {
	t.Parallel()

	s := email.MustNewPostmarkSender(email.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "noreply@bizdesk.kz",
		SupportEmail:         "support@bizdesk.kz",
	})
	err := s.Send(context.Background(), email.Message{To: "not-an-email", Subject: "x", TextBody: "x"})
	assert.ErrorIs(t, err, email.ErrInvalidMessage)
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	t.Run("without dir only logs", func(t *testing.T) {
		t.Parallel()
		s := email.NewLogSender()
		require.NoError(t, s.Send(context.Background(), email.Message{To: "owner@shop.kz", Subject: "Hi", TextBody: "hi"}))
	})

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "mail")
		at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
		s := email.NewLogSender(email.WithDir(dir), email.WithClock(clock.Fixed(at)))

		err := s.Send(context.Background(), email.Message{
			To:       "owner@shop.kz",
			Subject:  "Payment approved!",
			HTMLBody: "<p>approved</p>",
		})
		require.NoError(t, err)

		html, err := os.ReadFile(filepath.Join(dir, "2025_06_01_093000_payment_approved.html"))
		require.NoError(t, err)
		assert.Equal(t, "<p>approved</p>", string(html))

		raw, err := os.ReadFile(filepath.Join(dir, "2025_06_01_093000_payment_approved.json"))
		require.NoError(t, err)
		var meta map[string]string
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "owner@shop.kz", meta["to"])
		assert.Equal(t, "Payment approved!", meta["subject"])
		assert.Equal(t, at.Format(time.RFC3339), meta["timestamp"])
	})

	t.Run("tag names the file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
		s := email.NewLogSender(email.WithDir(dir), email.WithClock(clock.Fixed(at)))

		require.NoError(t, s.Send(context.Background(), email.Message{To: "owner@shop.kz", Subject: "Hi", TextBody: "hi", Tag: "expiry/warning"}))
		_, err := os.Stat(filepath.Join(dir, "2025_06_01_093000_expirywarning.html"))
		assert.NoError(t, err)
	})

	t.Run("invalid message", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		s := email.NewLogSender(email.WithDir(dir))
		assert.ErrorIs(t, s.Send(context.Background(), email.Message{}), email.ErrInvalidMessage)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	_, err := email.Render("missing.html", nil)
	assert.ErrorIs(t, err, email.ErrUnknownTemplate)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

type owners map[uuid.UUID]*principal.Owner

func (o owners) GetOwner(_ context.Context, id uuid.UUID) (*principal.Owner, error) {
	if owner, ok := o[id]; ok {
		return owner, nil
	}
	return nil, principal.ErrPrincipalNotFound
}

func TestNotifications(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()
	book := owners{accountID: {ID: accountID, Email: "owner@shop.kz"}}
	expires := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	t.Run("payment approved", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		n := email.NewNotifications(sender, book)

		req := payment.Request{
			AccountID:    accountID,
			AmountPaid:   decimal.RequireFromString("9000"),
			Plan:         subscription.PlanProMonthly,
			Status:       payment.StatusApproved,
			AdminComment: "thanks <3",
		}
		state := subscription.State{Plan: subscription.PlanProMonthly, IsActive: true, RemainingDays: 30, ExpirationDate: &expires}
		require.NoError(t, n.PaymentDecided(context.Background(), req, state, expires))

		require.Len(t, sender.sent, 1)
		msg := sender.sent[0]
		assert.Equal(t, "owner@shop.kz", msg.To)
		assert.Equal(t, "Your payment has been approved", msg.Subject)
		assert.Equal(t, "payment-approved", msg.Tag)
		assert.Contains(t, msg.HTMLBody, "9000.00")
		assert.Contains(t, msg.HTMLBody, "01 Jul 2025")
		assert.Contains(t, msg.HTMLBody, "30 days left")
		assert.Contains(t, msg.HTMLBody, "thanks &lt;3")
	})

	t.Run("payment rejected", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		n := email.NewNotifications(sender, book)

		req := payment.Request{AccountID: accountID, AmountPaid: decimal.NewFromInt(10), Plan: subscription.PlanProWeekly, Status: payment.StatusRejected}
		require.NoError(t, n.PaymentDecided(context.Background(), req, subscription.State{Plan: subscription.PlanBasic}, expires))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "Your payment has been rejected", sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].HTMLBody, "has not changed")
	})

	t.Run("subscription expiring", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		n := email.NewNotifications(sender, book)

		state := subscription.State{Plan: subscription.PlanProWeekly, ExpirationDate: &expires}
		require.NoError(t, n.SubscriptionExpiring(context.Background(), accountID, state, 3))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "Your subscription expires in 3 days", sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].HTMLBody, "<strong>3 days</strong>")
		assert.Contains(t, sender.sent[0].HTMLBody, "pro_weekly")
	})

	t.Run("expiring without date", func(t *testing.T) {
		t.Parallel()
		n := email.NewNotifications(&recordingSender{}, book)
		err := n.SubscriptionExpiring(context.Background(), accountID, subscription.State{}, 3)
		assert.ErrorIs(t, err, email.ErrInvalidMessage)
	})

	t.Run("unknown owner", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		n := email.NewNotifications(sender, book)
		state := subscription.State{Plan: subscription.PlanProWeekly, ExpirationDate: &expires}
		err := n.SubscriptionExpiring(context.Background(), uuid.New(), state, 7)
		assert.ErrorIs(t, err, principal.ErrPrincipalNotFound)
		assert.Empty(t, sender.sent)
	})

	assert.Panics(t, func() { email.NewNotifications(nil, book) })
}
