package payment

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// Status is the lifecycle state of a Request. It implements statemachine.State.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Name() string { return string(s) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Decision is an administrator verdict. It implements statemachine.Event.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Name() string { return string(d) }

// ParseDecision accepts "APPROVE" / "approve" and "REJECT" / "reject".
func ParseDecision(s string) (Decision, bool) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	if d != DecisionApprove && d != DecisionReject {
		return "", false
	}
	return d, true
}

// Request is a submitted payment claim.
// AccountID is the funded account; SubmittedBy is the principal that filed the claim.
type Request struct {
	ID            uuid.UUID         `json:"id"`
	AccountID     uuid.UUID         `json:"account_id"`
	SubmittedBy   uuid.UUID         `json:"submitted_by"`
	SenderName    string            `json:"sender_name"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
	Comment       string            `json:"comment,omitempty"`
	Plan          subscription.Plan `json:"plan"`
	ScreenshotRef string            `json:"screenshot_ref,omitempty"`
	Status        Status            `json:"status"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	AdminComment  string            `json:"admin_comment,omitempty"`
	DecidedBy     *uuid.UUID        `json:"decided_by,omitempty"`
	DecidedAt     *time.Time        `json:"decided_at,omitempty"`
}

// IsPending reports whether the request still awaits a decision.
func (r Request) IsPending() bool { return r.Status == StatusPending }

// Attachment is an uploaded receipt screenshot.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitParams are the inputs of Ledger.Submit.
// Either ScreenshotRef (already uploaded) or Screenshot may be set.
type SubmitParams struct {
	AccountID     uuid.UUID
	SubmittedBy   uuid.UUID
	SenderName    string
	AmountPaid    decimal.Decimal
	Comment       string
	Plan          subscription.Plan
	ScreenshotRef string
	Screenshot    *Attachment
}

// DecideParams are the inputs of Ledger.Decide.
type DecideParams struct {
	RequestID    uuid.UUID
	Decision     Decision
	AdminComment string
	DecidedBy    uuid.UUID
}
