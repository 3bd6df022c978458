package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/bizdesk/pkg/validator"
)

// PostmarkSender delivers messages through Postmark's transactional API.
type PostmarkSender struct {
	client *postmark.Client
	config Config
}

// NewPostmarkSender checks cfg and creates a PostmarkSender.
func NewPostmarkSender(cfg Config) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if err := validator.Apply(
		validator.ValidEmail("sender_email", cfg.SenderEmail),
		validator.ValidEmail("support_email", cfg.SupportEmail),
	); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	return &PostmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// MustNewPostmarkSender is NewPostmarkSender that panics on invalid config.
func MustNewPostmarkSender(cfg Config) *PostmarkSender {
	s, err := NewPostmarkSender(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Send replies go to the support address; only opens and HTML links are tracked.
func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.config.SenderEmail,
		ReplyTo:    s.config.SupportEmail,
		To:         strings.TrimSpace(msg.To),
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TextBody:   msg.TextBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
