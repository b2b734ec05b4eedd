package alert

import (
	"os"
	"strings"
	"time"
)

// Environment keys for the notification channel.
const (
	EnvAccountID        = "WELLCHECK_NOTIFY_ACCOUNT_ID"
	EnvAuthToken        = "WELLCHECK_NOTIFY_AUTH_TOKEN"
	EnvSenderAddress    = "WELLCHECK_NOTIFY_SENDER_ADDRESS"
	EnvRecipientAddress = "WELLCHECK_NOTIFY_RECIPIENT_ADDRESS"
	EnvTimeout          = "WELLCHECK_NOTIFY_TIMEOUT"
)

// Config holds the notification channel credentials and addresses.
type Config struct {
	AccountID        string
	AuthToken        string
	SenderAddress    string
	RecipientAddress string

	// Timeout bounds one send attempt. Default: 15s.
	Timeout time.Duration
}

// DefaultConfig returns a Config with no credentials.
func DefaultConfig() Config {
	return Config{Timeout: 15 * time.Second}
}

// ConfigFromEnv reads WELLCHECK_NOTIFY_* variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.AccountID = os.Getenv(EnvAccountID)
	cfg.AuthToken = os.Getenv(EnvAuthToken)
	cfg.SenderAddress = os.Getenv(EnvSenderAddress)
	cfg.RecipientAddress = os.Getenv(EnvRecipientAddress)
	if d, err := time.ParseDuration(os.Getenv(EnvTimeout)); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// Missing returns the environment keys of every blank credential.
func (c Config) Missing() []string {
	var missing []string
	for _, f := range []struct{ key, val string }{
		{EnvAccountID, c.AccountID},
		{EnvAuthToken, c.AuthToken},
		{EnvSenderAddress, c.SenderAddress},
		{EnvRecipientAddress, c.RecipientAddress},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.key)
		}
	}
	return missing
}

// Complete reports whether every credential is set.
func (c Config) Complete() bool {
	return len(c.Missing()) == 0
}
