package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"habitquest/internal/store"
)

var errShopEmpty = errors.New("shop catalog is empty")

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	store   store.Store
	redis   redis.UniversalClient
	version string
	started time.Time
}

func NewHealthHandler(st store.Store, version string) *HealthHandler {
	return &HealthHandler{store: st, version: version, started: time.Now()}
}

// WithRedis adds a Redis reachability check to readiness.
func (h *HealthHandler) WithRedis(rdb redis.UniversalClient) *HealthHandler {
	h.redis = rdb
	return h
}

type readiness struct {
	Ready   bool              `json:"ready"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports whether the store answers, the shop catalog is seeded
// and Redis, when configured, is reachable.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res := readiness{
		Ready:   true,
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  make(map[string]string),
	}
	record := func(name string, err error) {
		if err != nil {
			res.Ready = false
			res.Checks[name] = err.Error()
			return
		}
		res.Checks[name] = "ok"
	}

	record("store", h.store.Ping(ctx))
	record("shop", h.shopSeeded(ctx))
	if h.redis != nil {
		record("redis", h.redis.Ping(ctx).Err())
	}

	code := http.StatusOK
	if !res.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, res)
}

// Health is the short form of Readiness for load balancers.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *HealthHandler) shopSeeded(ctx context.Context) error {
	return h.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		items, err := tx.ListPetItems(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errShopEmpty
		}
		return nil
	})
}
