package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"habitquest/internal/caching"
	"habitquest/internal/clock"
	"habitquest/internal/config"
	"habitquest/internal/db"
	"habitquest/internal/economy"
	httpServer "habitquest/internal/http"
	"habitquest/internal/http/handlers"
	"habitquest/internal/http/middleware"
	"habitquest/internal/logger"
	"habitquest/internal/repository"
	"habitquest/internal/service"
	"habitquest/internal/store"
	"habitquest/internal/store/memory"
	"habitquest/internal/ws"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:  "habitquest",
		Usage: "habit tracker with a reward economy",
		Commands: []*cli.Command{
			commandServe(),
			commandSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal("exit", "error", err)
	}
}

var memoryFlag = &cli.BoolFlag{
	Name:  "memory",
	Usage: "keep all state in process memory instead of Postgres",
}

// openStore returns the configured store and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, inMemory bool) (store.Store, func(), error) {
	if inMemory {
		logger.Warn("using in-memory store; state is lost on exit")
		return memory.New(), func() {}, nil
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewStore(pool), pool.Close, nil
}

func setup(c *cli.Context) (*config.Config, clock.Clock, error) {
	cfg, err := config.Load(!c.Bool(memoryFlag.Name))
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.TokenTTL)
	return cfg, clock.RealClock{Location: cfg.Location}, nil
}

func commandServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (default :APP_PORT)",
			},
			memoryFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, clk, err := setup(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, closeStore, err := openStore(ctx, cfg, c.Bool(memoryFlag.Name))
			if err != nil {
				return err
			}
			defer closeStore()

			if n, err := service.SeedShop(ctx, st, clk, service.DefaultShopItems()); err != nil {
				return err
			} else if n > 0 {
				logger.Info("shop seeded", "items", n)
			}

			// One Redis client backs both the rate limiter and the shop cache.
			rdb := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			health := handlers.NewHealthHandler(st, version)
			var shopCache caching.Cache = caching.NewLocal(256, cfg.ShopCacheTTL)
			if rdb != nil {
				defer rdb.Close()
				shopCache = caching.NewCacheRedis(rdb, true)
				health.WithRedis(rdb)
				logger.Info("redis connected", "addr", cfg.RedisAddr)
			}

			deps := service.NewDeps(st, economy.Default(), clk)
			hub := ws.NewHub()
			h := handlers.NewHandler(deps, hub, service.NewPetService(deps, shopCache, cfg.ShopCacheTTL))

			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			r.Use(gin.Recovery())
			httpServer.RegisterRoutes(r, h, health, hub, cfg)

			addr := c.String("addr")
			if addr == "" {
				addr = ":" + cfg.AppPort
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("server started", "addr", addr, "version", version)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("server exited")
			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert the default shop catalog",
		Action: func(c *cli.Context) error {
			cfg, clk, err := setup(c)
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(c.Context, cfg, false)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := service.SeedShop(c.Context, st, clk, service.DefaultShopItems())
			if err != nil {
				return err
			}
			logger.Info("seed finished", "inserted", n)
			return nil
		},
	}
}
