package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())

	_, err = New(&Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestConfigForEnvironment(t *testing.T) {
	assert.Equal(t, "console", ConfigForEnvironment("development").Format)
	assert.Equal(t, "json", ConfigForEnvironment("production").Format)
}

func TestContextFields(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), l)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithFarmerID(ctx, "farmer-9")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	L(ctx).Info("posted")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "farmer-9", fields["farmer_id"])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, GetFarmerID(context.Background()))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGinMiddleware_LevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, logs := observed(zapcore.InfoLevel)

	r := gin.New()
	r.Use(GinMiddleware(l), Recovery(l))
	r.GET("/ok", func(c *gin.Context) {
		L(c.Request.Context()).Info("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/ok", "/missing", "/panic"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	inside := logs.FilterMessage("inside").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "/ok", inside[0].ContextMap()["path"])

	requests := logs.FilterMessage("HTTP request").All()
	require.Len(t, requests, 3)
	assert.Equal(t, zapcore.InfoLevel, requests[0].Level)
	assert.Equal(t, zapcore.WarnLevel, requests[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, requests[2].Level)
	assert.EqualValues(t, http.StatusInternalServerError, requests[2].ContextMap()["status"])
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)
	gl := NewGormLogger(l, gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
	fc := func() (string, int64) { return "SELECT 1", 1 }
	ctx := WithRequestID(context.Background(), "req-2")

	gl.Trace(ctx, time.Now(), fc, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries are not logged at warn")

	gl.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "req-2", logs.All()[0].ContextMap()["request_id"])

	gl.Trace(ctx, time.Now(), fc, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())

	gl.Trace(ctx, time.Now(), fc, errors.New("disk full"))
	assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())

	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), fc, errors.New("ignored"))
	assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())
}

func TestGormLogger_RowLocksAndCancellation(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)
	gl := NewGormLogger(l, gormlogger.Warn,
		WithSlowThreshold(time.Second), WithLockWaitThreshold(10*time.Millisecond))
	ctx := WithFarmerID(WithRequestID(context.Background(), "req-3"), "farmer-9")
	lock := func() (string, int64) {
		return `SELECT * FROM "budgets" WHERE id = 'b1' FOR UPDATE`, 1
	}
	read := func() (string, int64) { return `SELECT * FROM "budgets"`, 3 }

	// a read taking 100ms is under the slow threshold but a lock wait of the same length is not
	gl.Trace(ctx, time.Now().Add(-100*time.Millisecond), read, nil)
	assert.Equal(t, 0, logs.Len())
	gl.Trace(ctx, time.Now().Add(-100*time.Millisecond), lock, nil)
	locks := logs.FilterMessage("Contended row lock").All()
	require.Len(t, locks, 1)
	assert.Equal(t, StatementLock, locks[0].ContextMap()["statement"])
	assert.Equal(t, "farmer-9", locks[0].ContextMap()["farmer_id"])

	gl.Trace(ctx, time.Now(), read, context.Canceled)
	gl.Trace(ctx, time.Now(), read, context.DeadlineExceeded)
	cancelled := logs.FilterMessage("SQL cancelled").All()
	require.Len(t, cancelled, 2)
	assert.Equal(t, zapcore.WarnLevel, cancelled[0].Level)
	assert.Equal(t, 0, logs.FilterMessage("SQL Error").Len())

	gl.LogMode(gormlogger.Error).Trace(ctx, time.Now(), read, context.Canceled)
	assert.Len(t, logs.FilterMessage("SQL cancelled").All(), 2)
}

func TestStatementKind(t *testing.T) {
	assert.Equal(t, StatementRead, StatementKind("  select * from accounts"))
	assert.Equal(t, StatementRead, StatementKind("WITH t AS (SELECT 1) SELECT * FROM t"))
	assert.Equal(t, StatementLock, StatementKind(`SELECT * FROM "accounts" WHERE id = 1 FOR UPDATE`))
	assert.Equal(t, StatementWrite, StatementKind(`UPDATE "budgets" SET spent_amount = 10`))
	assert.Equal(t, StatementWrite, StatementKind(`INSERT INTO "transactions" VALUES (1)`))
}

func TestGormLevelFor(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevelFor("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevelFor("info"))
	assert.Equal(t, gormlogger.Error, GormLevelFor("error"))
	assert.Equal(t, gormlogger.Silent, GormLevelFor("silent"))
}
