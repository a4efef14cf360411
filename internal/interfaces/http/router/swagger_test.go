package router

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/openship/backend/docs"
	"github.com/openship/backend/internal/infrastructure/config"
)

func TestNewEngine_Swagger(t *testing.T) {
	t.Run("served when enabled", func(t *testing.T) {
		engine, err := NewEngine(Options{HTTP: config.HTTPConfig{MaxBodySize: 1 << 10}, Swagger: true}, Handlers{})
		require.NoError(t, err)

		w := serve(engine, http.MethodGet, "/swagger/doc.json")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "searchShopOrders")
		assert.Contains(t, w.Body.String(), "/webhooks/shop/{shopId}/cancel-order")
	})

	t.Run("absent when disabled", func(t *testing.T) {
		engine, err := NewEngine(Options{HTTP: config.HTTPConfig{MaxBodySize: 1 << 10}}, Handlers{})
		require.NoError(t, err)

		w := serve(engine, http.MethodGet, "/swagger/doc.json")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
