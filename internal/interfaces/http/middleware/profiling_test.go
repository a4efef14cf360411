package middleware

import (
	"net/http"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_AttachesRouteLabel(t *testing.T) {
	var route, method string
	router := gin.New()
	router.Use(Profiling(true))
	router.GET("/api/v1/orders", func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), "route")
		method, _ = pprof.Label(c.Request.Context(), "method")
		c.Status(http.StatusOK)
	})

	w := serveRouter(router, http.MethodGet, "/api/v1/orders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/orders", route)
	assert.Equal(t, http.MethodGet, method)
}

func TestProfiling_Disabled(t *testing.T) {
	var found bool
	router := gin.New()
	router.Use(Profiling(false))
	router.GET("/x", func(c *gin.Context) {
		_, found = pprof.Label(c.Request.Context(), "route")
	})
	serveRouter(router, http.MethodGet, "/x")
	assert.False(t, found)
}
