package logging

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Field names attached to request-scoped entries.
const (
	FieldRequestID = "request_id"
	FieldTenant    = "tenant"
	FieldTool      = "tool"
	FieldVerb      = "verb"
	FieldError     = "error"
	Stacktrace     = "stacktrace"
)

// Configure sets up the standard logrus logger. Output always goes to
// stderr: in stdio mode stdout carries the JSON-RPC stream.
func Configure(level, format string) error {
	return Apply(log.StandardLogger(), level, format, os.Stderr)
}

// Apply configures logger with the given level, format and output.
func Apply(logger *log.Logger, level, format string, out io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}

	switch format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	default:
		return errors.Errorf("invalid log format %q", format)
	}

	logger.SetLevel(lvl)
	logger.SetOutput(out)
	return nil
}

type contextKey struct{}

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *log.Entry) context.Context {
	return context.WithValue(ctx, contextKey{}, entry)
}

// FromContext returns the entry stored in ctx, or a bare entry on the
// standard logger.
func FromContext(ctx context.Context) *log.Entry {
	if entry, ok := ctx.Value(contextKey{}).(*log.Entry); ok {
		return entry
	}
	return log.NewEntry(log.StandardLogger())
}

// WithFields adds fields to the entry stored in ctx and returns the new
// context along with the new entry.
func WithFields(ctx context.Context, fields log.Fields) (context.Context, *log.Entry) {
	entry := FromContext(ctx).WithFields(fields)
	return WithLogger(ctx, entry), entry
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}

// WithStacktrace adds err and, when one was recorded by pkg/errors, its
// stack trace to entry.
func WithStacktrace(entry *log.Entry, err error) *log.Entry {
	entry = entry.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		entry = entry.WithField(Stacktrace, stack)
	}
	return entry
}

// ExtractStack returns the first stack trace found walking down the cause
// chain of err.
func ExtractStack(err error) errors.StackTrace {
	if stackErr, ok := err.(stackTracer); ok {
		return stackErr.StackTrace()
	} else if causeErr, ok := err.(causer); ok {
		return ExtractStack(causeErr.Cause())
	}
	return nil
}
