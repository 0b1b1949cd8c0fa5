package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	accounts := NewDomainGroup("accounts", "/accounts")
	accounts.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	goals := NewDomainGroup("goals", "/goals")
	goals.GET("", func(c *gin.Context) { c.String(http.StatusOK, "goals") })

	r.Register(accounts).Register(goals)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/accounts/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/goals")
	assert.Equal(t, "goals", w.Body.String())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("crops", "/crops")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("/a", ok).
		POST("/b", ok).
		PUT("/c/:id", ok).
		PATCH("/d/:id", ok).
		DELETE("/e/:id", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/crops/a"},
		{http.MethodPost, "/api/v1/crops/b"},
		{http.MethodPut, "/api/v1/crops/c/1"},
		{http.MethodPatch, "/api/v1/crops/d/1"},
		{http.MethodDelete, "/api/v1/crops/e/1"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.method, w.Body.String())
	}

	assert.Equal(t, "crops", g.Name())
	assert.Equal(t, "/crops", g.Prefix())
}

func TestDomainGroup_MiddlewareReachesSubgroups(t *testing.T) {
	engine := gin.New()
	finance := NewDomainGroup("finance", "/finance")

	dashboard := finance.Group("dashboard", "/dashboard")
	dashboard.GET("/summary", func(c *gin.Context) { c.String(http.StatusOK, "summary") })
	// added after the routes; still applies
	finance.Use(func(c *gin.Context) {
		c.Header("X-Guard", "applied")
		c.Next()
	})

	finance.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/finance/dashboard/summary")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Guard"))
}

func TestDomainGroup_RejectingMiddlewareStopsHandler(t *testing.T) {
	engine := gin.New()
	called := false
	g := NewDomainGroup("finance", "/finance").Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	})
	g.GET("/accounts", func(c *gin.Context) { called = true })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/finance/accounts")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}
