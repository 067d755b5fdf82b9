// Package observability wires error reporting shared by every process.
package observability

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tatame/tatame-backend/pkg/config"
)

const flushTimeout = 2 * time.Second

// InitSentry configures the global Sentry client. It returns a flush func to
// defer from main, and reports false when no DSN is configured.
func InitSentry(cfg config.SentryConfig, environment, serverName string) (func(), bool, error) {
	if !cfg.Enabled() {
		return func() {}, false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      environment,
		ServerName:       serverName,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, false, err
	}
	return func() { sentry.Flush(flushTimeout) }, true, nil
}
