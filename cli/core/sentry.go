package core

import (
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryDSN is the active Sentry DSN, empty when reporting is off.
var SentryDSN = ""

// SentryConfig holds the configuration for Sentry initialization
type SentryConfig struct {
	DSN     string
	Release string
}

// IsTrackingEnabled reports whether error reporting may be used. It is on
// unless TABREFRESH_TRACKING is "false".
func IsTrackingEnabled() bool {
	return !strings.EqualFold(os.Getenv("TABREFRESH_TRACKING"), "false")
}

// InitSentry initializes the Sentry SDK. TABREFRESH_SENTRY_DSN overrides
// the DSN compiled into the binary. Without a DSN nothing is reported.
func InitSentry(cfg SentryConfig) error {
	SentryDSN = cfg.DSN
	if dsn := os.Getenv("TABREFRESH_SENTRY_DSN"); dsn != "" {
		SentryDSN = dsn
	}
	if SentryDSN == "" {
		return nil
	}
	environment := os.Getenv("TABREFRESH_ENV")
	if environment == "" {
		environment = "prod"
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              SentryDSN,
		Environment:      environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// server URLs and names may be confidential
			event.ServerName = ""
			event.Request = nil
			return event
		},
	})
}

// FlushSentry flushes buffered events before the program exits
func FlushSentry(timeout time.Duration) {
	if SentryDSN == "" {
		return
	}
	sentry.Flush(timeout)
}

// SetSentryTag sets a tag on the current scope
func SetSentryTag(key, value string) {
	if SentryDSN == "" {
		return
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag(key, value)
	})
}

// RecoverWithSentry recovers from a panic and sends it to Sentry
// Usage: defer core.RecoverWithSentry()
func RecoverWithSentry() {
	if SentryDSN == "" {
		return
	}
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

// ExitWithError reports err to Sentry and exits with the code matching
// its kind. Usage errors are not reported.
func ExitWithError(err error) {
	code := ExitCode(err)
	if err != nil && code != 2 && SentryDSN != "" {
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
	}
	SyncLogger()
	os.Exit(code)
}
