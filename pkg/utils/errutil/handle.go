package errutil

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err and reports it to Sentry when a Sentry client is configured
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, "error", err)

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		if e := goerr.Unwrap(err); e != nil {
			scope.SetContext("goerr", sentry.Context(e.Values()))
		}
		scope.SetTag("message", msg)
		hub.CaptureException(err)
	})
}
