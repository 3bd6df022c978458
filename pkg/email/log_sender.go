package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/bizdesk/pkg/clock"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
)

// LogSender is the development Sender. It logs every message and, with a directory set,
// saves the body as HTML next to a JSON metadata file.
type LogSender struct {
	dir    string
	logger *slog.Logger
	clock  clock.Clock
}

// LogSenderOption configures LogSender.
type LogSenderOption func(*LogSender)

// WithDir saves messages to dir, creating it on first send.
func WithDir(dir string) LogSenderOption {
	return func(s *LogSender) { s.dir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) LogSenderOption {
	return func(s *LogSender) { s.logger = logger.OrDiscard(l) }
}

// WithClock sets the clock used for file names.
func WithClock(c clock.Clock) LogSenderOption {
	return func(s *LogSender) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewLogSender creates a LogSender.
func NewLogSender(opts ...LogSenderOption) *LogSender {
	s := &LogSender{logger: logger.Discard(), clock: clock.System()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type messageMetadata struct {
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "email sent",
		logger.Component("email"),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
	)
	if s.dir == "" {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	now := s.clock.Now()
	identifier := msg.Tag
	if identifier == "" {
		identifier = msg.Subject
	}
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(identifier))

	body := msg.HTMLBody
	if body == "" {
		body = "<pre>" + msg.TextBody + "</pre>"
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".html"), []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write HTML file: %v", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(messageMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		Subject:   msg.Subject,
		Tag:       msg.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrFailedToSendEmail, err)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
