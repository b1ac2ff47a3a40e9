// Package sentry wraps sentry-go initialization and capture helpers.
package sentry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/unsta/chatbot-go/internal/buildinfo"
)

// Initialize sets up the Sentry SDK. Returns false when no DSN is
// configured, in which case all capture helpers become no-ops.
func Initialize(dsn, environment string) (bool, error) {
	if dsn == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          fmt.Sprintf("chatbot-go@%s", buildinfo.Version),
		AttachStacktrace: true,
		TracesSampleRate: 0.1,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// Flush drains buffered events before shutdown.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// CaptureException reports an error to Sentry.
func CaptureException(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// CaptureMessage reports a plain message to Sentry.
func CaptureMessage(msg string) {
	if msg == "" {
		return
	}
	sentry.CaptureMessage(msg)
}
