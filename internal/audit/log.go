// Package audit emits structured audit events for sign-ins, token issuance
// and admin mutations.
package audit

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit entry enriched with request and session context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	attrs := []zap.Field{
		zap.String("type", "audit"),
		zap.String("event", event),
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		attrs = append(attrs, zap.String("request_id", rid))
	}
	if s, ok := auth.SessionFromContext(ctx); ok {
		attrs = append(attrs, zap.String("user_id", s.UserID))
	}
	if len(fields) > 0 {
		attrs = append(attrs, zap.Any("fields", fields))
	}
	obs.Logger().Info("audit", attrs...)
	return nil
}
