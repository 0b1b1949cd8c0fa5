package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	farmerIDKey  contextKey = "farmer_id"
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID records the request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithFarmerID records the authenticated farmer in ctx
func WithFarmerID(ctx context.Context, farmerID string) context.Context {
	return context.WithValue(ctx, farmerIDKey, farmerID)
}

// GetRequestID returns the request id in ctx, or ""
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetFarmerID returns the farmer id in ctx, or ""
func GetFarmerID(ctx context.Context) string {
	id, _ := ctx.Value(farmerIDKey).(string)
	return id
}

// L returns the logger in ctx enriched with the trace, request and farmer of ctx.
//
//	logger.L(ctx).Info("budget recomputed", zap.String("budget_id", id))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the correlation fields present in ctx to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 4)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetFarmerID(ctx); id != "" {
		fields = append(fields, zap.String("farmer_id", id))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
