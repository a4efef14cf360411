package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "rid-9"); c.Next() })
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		GetGinLogger(c).Info("inside")
		assert.Equal(t, "rid-9", GetRequestID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "rid-9", entries[0].ContextMap()["request_id"])
	assert.Equal(t, 1, logs.FilterMessage("inside").Len())
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("adapter exploded") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}

func TestGinMiddleware_TagsRouteIDs(t *testing.T) {
	r := gin.New()
	r.Use(GinMiddleware(zap.NewNop()))

	var shopID, channelID string
	capture := func(c *gin.Context) {
		shopID = GetShopID(c.Request.Context())
		channelID, _ = c.Request.Context().Value(channelIDKey).(string)
	}
	r.POST("/api/v1/shops/:id/capabilities/:capability", capture)
	r.POST("/api/v1/channels/:id/purchases", capture)
	r.POST("/api/v1/webhooks/shop/:shopId/cancel-order", capture)

	cases := []struct {
		path          string
		shop, channel string
	}{
		{"/api/v1/shops/s-1/capabilities/getProduct", "s-1", ""},
		{"/api/v1/channels/c-1/purchases", "", "c-1"},
		{"/api/v1/webhooks/shop/s-2/cancel-order", "s-2", ""},
	}
	for _, tc := range cases {
		shopID, channelID = "", ""
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, tc.path, nil))
		assert.Equal(t, tc.shop, shopID, tc.path)
		assert.Equal(t, tc.channel, channelID, tc.path)
	}
}
