package email

import (
	"context"
	"errors"
	"fmt"
)

// Template keys for the notification mails.
const (
	TemplateFirstNotification  = "review.first"
	TemplateSecondNotification = "review.second"
)

// ErrMailDisabled is returned when outbound mail is switched off in the
// configuration.
var ErrMailDisabled = errors.New("mail sending is disabled")

// TransportError wraps a delivery failure (SMTP, rendering, throttling).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mail transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsDispatchFailure reports whether err is an ordinary per-recipient mail
// failure that the caller should log and skip rather than abort on.
func IsDispatchFailure(err error) bool {
	var transportErr *TransportError
	return errors.Is(err, ErrMailDisabled) || errors.As(err, &transportErr)
}

// Mailer delivers one templated notification to one recipient.
type Mailer interface {
	Send(ctx context.Context, templateKey, to, language string, data map[string]string) error
}
