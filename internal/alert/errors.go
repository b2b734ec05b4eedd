package alert

import (
	"fmt"
	"strings"
)

// ConfigError reports a notification channel that cannot be used. The
// dispatcher logs it and never returns it.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "notification channel not configured: missing " + strings.Join(e.Missing, ", ")
}

// SendError reports a failed send attempt. Like ConfigError it ends in
// the log.
type SendError struct {
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send alert to %s: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
