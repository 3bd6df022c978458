package email

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrymomot/bizdesk/pkg/validator"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email. At least one of HTMLBody and TextBody is required.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body,omitempty"`
	TextBody string `json:"text_body,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// Validate returns ErrInvalidMessage joined with the failed rules.
func (m Message) Validate() error {
	err := validator.Apply(
		validator.RequiredString("to", m.To),
		validator.ValidEmail("to", strings.TrimSpace(m.To)),
		validator.RequiredString("subject", m.Subject),
		validator.RequiredString("body", m.HTMLBody+m.TextBody),
	)
	if err != nil {
		return errors.Join(ErrInvalidMessage, err)
	}
	return nil
}
