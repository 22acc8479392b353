package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/clock"
	"habitquest/internal/service"
	"habitquest/internal/store/memory"
)

func readyz(t *testing.T, h *HealthHandler) (int, readiness) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/readyz", h.Readiness)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var body readiness
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestReadinessNeedsSeededShop(t *testing.T) {
	st := memory.New()

	code, body := readyz(t, NewHealthHandler(st, "test"))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, body.Ready)
	assert.Equal(t, "ok", body.Checks["store"])
	assert.Equal(t, errShopEmpty.Error(), body.Checks["shop"])
	assert.NotContains(t, body.Checks, "redis")

	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	_, err := service.SeedShop(context.Background(), st, clk, service.DefaultShopItems())
	require.NoError(t, err)

	code, body = readyz(t, NewHealthHandler(st, "test"))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Ready)
	assert.Equal(t, "ok", body.Checks["shop"])
	assert.Equal(t, "test", body.Version)
}

func TestReadinessReportsRedisDown(t *testing.T) {
	st := memory.New()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	_, err := service.SeedShop(context.Background(), st, clk, service.DefaultShopItems())
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	code, body := readyz(t, NewHealthHandler(st, "test").WithRedis(rdb))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, body.Ready)
	assert.Equal(t, "ok", body.Checks["store"])
	assert.Equal(t, "ok", body.Checks["shop"])
	assert.NotEqual(t, "ok", body.Checks["redis"])
}
