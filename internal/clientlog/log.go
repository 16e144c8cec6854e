// Package clientlog provides the structured logging used across the
// portmap, mount, rpc and nfs3 packages: a thin wrapper over log/slog with
// key-value structured calls, so call sites read
// "logger.Debug(msg, key, value, ...)" rather than hand-built format
// strings.
//
// Unlike a server, a client library should be quiet by default: procedure
// calls, privileged-port bind retries and the ephemeral-port fallback log at
// Debug, and connection lifecycle events (connect/disconnect) log at Info.
// Errors are returned to the caller as a CallError; the library does not
// log them itself.
package clientlog

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))
}

// SetLogger replaces the package-level logger. Applications embedding this
// library call this once at startup to route its logs into their own
// handler (JSON, a file, slog/zap bridge, etc).
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	logger.Store(l)
}

func current() *slog.Logger { return logger.Load() }

// Debug logs high-frequency protocol detail (per-call XID, wire sizes).
func Debug(msg string, kv ...any) { current().Debug(msg, kv...) }

// Info logs connection lifecycle events (connect, disconnect).
func Info(msg string, kv ...any) { current().Info(msg, kv...) }

// Warn logs recoverable anomalies.
func Warn(msg string, kv ...any) { current().Warn(msg, kv...) }

// Error logs failures the caller is about to surface as a CallError.
func Error(msg string, kv ...any) { current().Error(msg, kv...) }

// DebugCtx/InfoCtx/WarnCtx/ErrorCtx thread a context through to the
// handler so OpenTelemetry-aware handlers (if the embedding application
// installs one) can correlate log lines with a trace span, matching the
// teacher's *Ctx logging convention.
func DebugCtx(ctx context.Context, msg string, kv ...any) { current().DebugContext(ctx, msg, kv...) }
func InfoCtx(ctx context.Context, msg string, kv ...any)  { current().InfoContext(ctx, msg, kv...) }
func WarnCtx(ctx context.Context, msg string, kv ...any)  { current().WarnContext(ctx, msg, kv...) }
func ErrorCtx(ctx context.Context, msg string, kv ...any) { current().ErrorContext(ctx, msg, kv...) }
