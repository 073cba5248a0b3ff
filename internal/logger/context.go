package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging context threaded through a single
// repository/work-directory operation.
type LogContext struct {
	RepoPath   string
	TimelineID string
	WorkRoot   string
	StartTime  time.Time
}

// WithContext returns a new context carrying the given LogContext.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if absent.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext scoped to a repository path.
func NewLogContext(repoPath string) *LogContext {
	return &LogContext{
		RepoPath:  repoPath,
		StartTime: time.Now(),
	}
}

// Clone returns a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithTimeline returns a copy with the timeline id set.
func (lc *LogContext) WithTimeline(id string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TimelineID = id
	}
	return clone
}

// WithWorkRoot returns a copy with the work directory root set.
func (lc *LogContext) WithWorkRoot(root string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.WorkRoot = root
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
