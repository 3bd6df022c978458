package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

const dateLayout = "02 Jan 2006"

// OwnerFinder looks up the owner an account belongs to.
type OwnerFinder interface {
	GetOwner(ctx context.Context, id uuid.UUID) (*principal.Owner, error)
}

// Notifications renders and sends the subscription emails to account owners.
// It implements payment.Notifier.
type Notifications struct {
	sender Sender
	owners OwnerFinder
}

// NewNotifications panics if sender or owners is nil.
func NewNotifications(sender Sender, owners OwnerFinder) *Notifications {
	if sender == nil || owners == nil {
		panic("email: sender and owner finder are required")
	}
	return &Notifications{sender: sender, owners: owners}
}

var _ payment.Notifier = (*Notifications)(nil)

type paymentDecidedData struct {
	Subject       string
	Approved      bool
	Amount        string
	Plan          subscription.Plan
	ExpiresAt     string
	RemainingDays int
	AdminComment  string
}

// PaymentDecided tells the owner their payment request was approved or rejected.
func (n *Notifications) PaymentDecided(ctx context.Context, req payment.Request, state subscription.State, _ time.Time) error {
	data := paymentDecidedData{
		Approved:      req.Status == payment.StatusApproved,
		Amount:        req.AmountPaid.StringFixed(2),
		Plan:          req.Plan,
		RemainingDays: state.RemainingDays,
		AdminComment:  req.AdminComment,
	}
	if state.ExpirationDate != nil {
		data.ExpiresAt = state.ExpirationDate.Format(dateLayout)
	}
	if data.Approved {
		data.Subject = "Your payment has been approved"
	} else {
		data.Subject = "Your payment has been rejected"
	}
	return n.send(ctx, req.AccountID, data.Subject, "payment_decided.html", "payment-"+string(req.Status), data)
}

type subscriptionExpiringData struct {
	Subject   string
	Plan      subscription.Plan
	DaysLeft  int
	ExpiresAt string
}

// SubscriptionExpiring warns the owner that their paid plan ends in daysLeft days.
func (n *Notifications) SubscriptionExpiring(ctx context.Context, accountID uuid.UUID, state subscription.State, daysLeft int) error {
	if state.ExpirationDate == nil {
		return errors.Join(ErrInvalidMessage, fmt.Errorf("account %s has no expiration date", accountID))
	}
	data := subscriptionExpiringData{
		Subject:   fmt.Sprintf("Your subscription expires in %d days", daysLeft),
		Plan:      state.Plan,
		DaysLeft:  daysLeft,
		ExpiresAt: state.ExpirationDate.Format(dateLayout),
	}
	return n.send(ctx, accountID, data.Subject, "subscription_expiring.html", "subscription-expiring", data)
}

func (n *Notifications) send(ctx context.Context, accountID uuid.UUID, subject, tpl, tag string, data any) error {
	owner, err := n.owners.GetOwner(ctx, accountID)
	if err != nil {
		return err
	}
	body, err := Render(tpl, data)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:       owner.Email,
		Subject:  subject,
		HTMLBody: body,
		Tag:      tag,
	})
}
