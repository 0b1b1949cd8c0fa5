package middleware

import (
	"context"
	"strings"

	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling runs the rest of the chain under pprof labels for the matched
// route and method, so continuous profiles can be sliced per endpoint.
// Requests without a matched route, and health checks, are not labeled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || strings.HasSuffix(route, "/health") {
			c.Next()
			return
		}
		labels := telemetry.HTTPRequestLabels(route, c.Request.Method)
		if op := operationOf(route); op != "" {
			labels[telemetry.ProfilingLabelOperation] = op
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// operationOf names the resource of a route: "/api/v1/finance/budgets/:id" is "budgets"
func operationOf(route string) string {
	for _, part := range strings.Split(strings.Trim(route, "/"), "/") {
		switch {
		case part == "api", part == "finance", strings.HasPrefix(part, ":"):
		case len(part) > 1 && part[0] == 'v' && strings.Trim(part[1:], "0123456789") == "":
		default:
			return part
		}
	}
	return ""
}
