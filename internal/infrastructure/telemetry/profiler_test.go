package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("requires address and name", func(t *testing.T) {
		_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "farmledger"}, zap.NewNop())
		assert.ErrorContains(t, err, "server address")

		_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
		assert.ErrorContains(t, err, "application name")
	})
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Route":          "/api/v1/transactions/:id",
		"HTTP-Method":    "POST",
		"farmer_id":      "7b1c",
		"empty":          "",
		"!!!":            "gone",
		"operation name": strings.Repeat("x", MaxLabelValueLength+10),
	})

	assert.Equal(t, []string{
		"http_method", "POST",
		"route", "/api/v1/transactions/:id",
		"operation_name", strings.Repeat("x", MaxLabelValueLength),
	}, pairs)
}

func TestWithProfilingLabels(t *testing.T) {
	called := 0
	WithProfilingLabels(context.Background(), HTTPRequestLabels("/api/v1/accounts", "GET"), func(ctx context.Context) {
		called++
	})
	WithProfilingLabels(context.Background(), nil, func(ctx context.Context) {
		called++
	})
	assert.Equal(t, 2, called)
}
