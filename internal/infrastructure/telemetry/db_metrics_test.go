package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sample struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&sample{}))
	return db
}

func TestOperationOf(t *testing.T) {
	tests := map[string]string{
		"SELECT * FROM budgets":     "SELECT",
		"  insert into budgets ...": "INSERT",
		"UPDATE budgets SET ...":    "UPDATE",
		"delete from budgets":       "DELETE",
		"WITH totals AS (SELECT 1)": "OTHER",
		"":                          "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, operationOf(sql), sql)
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	t.Run("disabled provider", func(t *testing.T) {
		m, err := RegisterDBMetrics(openSQLite(t), &MeterProvider{logger: zap.NewNop()}, DBMetricsConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("records queries", func(t *testing.T) {
		db := openSQLite(t)
		mp, reader := newManualMeterProvider(t)
		m, err := RegisterDBMetrics(db, mp, DBMetricsConfig{SlowQueryThreshold: time.Hour}, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, m)
		ctx := context.Background()

		require.NoError(t, db.WithContext(ctx).Create(&sample{Name: "tractor"}).Error)
		var found []sample
		require.NoError(t, db.WithContext(ctx).Find(&found).Error)
		require.NoError(t, db.WithContext(ctx).Find(&found).Error)

		m.RecordQuery(ctx, "SELECT", "", 2*time.Hour)

		got := collect(t, reader)
		queries := got["db_query_total"]
		assert.Equal(t, int64(1), sumByAttr(t, queries, AttrDBOperation, "INSERT"))
		assert.Equal(t, int64(3), sumByAttr(t, queries, AttrDBOperation, "SELECT"))
		assert.Equal(t, int64(1), sumByAttr(t, got["db_slow_query_total"], AttrDBTable, "unknown"))
	})

	t.Run("pool stats", func(t *testing.T) {
		db := openSQLite(t)
		mp, reader := newManualMeterProvider(t)
		m, err := RegisterDBMetrics(db, mp, DBMetricsConfig{PoolStatsInterval: time.Hour}, zap.NewNop())
		require.NoError(t, err)

		m.StartPoolStatsCollection(context.Background())
		m.Stop()
		m.Stop()

		assert.Contains(t, collect(t, reader), "db_pool_connections")
	})
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := openSQLite(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
}
