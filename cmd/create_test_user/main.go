package main

import (
	"context"
	"flag"

	"habitquest/internal/clock"
	"habitquest/internal/config"
	"habitquest/internal/db"
	"habitquest/internal/domain"
	"habitquest/internal/economy"
	"habitquest/internal/logger"
	"habitquest/internal/repository"
	"habitquest/internal/service"
)

// Registers a demo account (or logs into it when it exists) and prints a token.
func main() {
	email := flag.String("email", "demo@example.com", "account email")
	username := flag.String("username", "demo", "account username")
	password := flag.String("password", "demo-password", "account password")
	flag.Parse()

	cfg, err := config.Load(true)
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.TokenTTL)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect", "error", err)
	}
	defer pool.Close()

	deps := service.NewDeps(repository.NewStore(pool), economy.Default(), clock.RealClock{Location: cfg.Location})
	auth := service.NewAuthService(deps)

	res, err := auth.Register(ctx, service.RegisterInput{Email: *email, Username: *username, Password: *password})
	if domain.IsKind(err, domain.KindConflict) {
		logger.Info("user already exists, logging in", "email", *email)
		res, err = auth.Login(ctx, *email, *password)
	}
	if err != nil {
		logger.Fatal("create user", "error", err)
	}

	logger.Info("user ready", "id", res.User.ID, "username", res.User.Username, "gold", res.User.Gold)
	logger.Info("token", "token", res.Token)
}
