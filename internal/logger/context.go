package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds connection-scoped logging context.
type LogContext struct {
	Device    string    // Device address the connection targets
	Service   string    // Remote service identifier
	Channel   int32     // Instrumentation channel code, 0 if not applicable
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context carrying the given LogContext.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a connection to the given device.
func NewLogContext(device string) *LogContext {
	return &LogContext{
		Device:    device,
		StartTime: time.Now(),
	}
}

// WithChannel returns a copy with the channel code set.
func (lc *LogContext) WithChannel(code int32) *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	clone.Channel = code
	return &clone
}

// WithService returns a copy with the service identifier set.
func (lc *LogContext) WithService(service string) *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	clone.Service = service
	return &clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
