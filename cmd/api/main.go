// @title                       todoapp auth API
// @version                     1.0
// @description                 Account registration, token issuance and renewal, and account lifecycle actions.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/naiarievilo/todoapp/docs"
	"github.com/naiarievilo/todoapp/internal/api"
	"github.com/naiarievilo/todoapp/internal/api/handler"
	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/service"
	"github.com/naiarievilo/todoapp/internal/core/token"
	mongostore "github.com/naiarievilo/todoapp/internal/infrastructure/db/mongo"
	redisstore "github.com/naiarievilo/todoapp/internal/infrastructure/db/redis"
	"github.com/naiarievilo/todoapp/internal/infrastructure/notify"
	"github.com/naiarievilo/todoapp/internal/infrastructure/queue"
	"github.com/naiarievilo/todoapp/internal/pkg/config"
	"github.com/naiarievilo/todoapp/internal/pkg/observability"
	"github.com/naiarievilo/todoapp/pkg/logger"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "todoapp",
		Env:     cfg.Env,
		Version: version,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version); err != nil {
		log.Warn().Err(err).Msg("sentry disabled")
	}
	defer observability.FlushSentry()

	// --- Stores ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	accounts := mongostore.NewAccountRepository(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		return err
	}
	roles := mongostore.NewRoleRepository(db)

	// --- Tokens ---
	policy, err := token.NewPolicy(token.PolicyConfig{
		Issuer:    cfg.Token.Issuer,
		Algorithm: cfg.Token.Algorithm,
		Secret:    []byte(cfg.Token.Secret),
		TTLs: map[domain.TokenKind]time.Duration{
			domain.TokenAccess:       cfg.Token.AccessTTL,
			domain.TokenRefresh:      cfg.Token.RefreshTTL,
			domain.TokenVerification: cfg.Token.VerificationTTL,
			domain.TokenUnlock:       cfg.Token.UnlockTTL,
			domain.TokenEnable:       cfg.Token.EnableTTL,
		},
	})
	if err != nil {
		return err
	}
	codec := token.NewCodec(policy)

	// --- Notifications ---
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notify.NewLogNotifier(cfg.PublicBaseURL, logger.For(log, "notifier")), logger.For(log, "dispatcher"))
	dispatcher.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(
		accounts,
		service.NewBcryptHasher(cfg.Account.BcryptCost),
		codec,
		dispatcher,
		redisstore.NewTokenGuard(rdb),
		service.AuthConfig{
			DefaultRole:      cfg.Account.DefaultRole,
			LockoutThreshold: cfg.Account.LockoutThreshold,
		},
		logger.For(log, "auth"),
	)
	gate := service.NewGate(codec, accounts, roles, cfg.Account.UnverifiedGrace, nil, logger.For(log, "gate"))

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		Gate:        gate,
		Readiness:   handler.NewStoreReadinessHandler(db, rdb),
	}, log)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
