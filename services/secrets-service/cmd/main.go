package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/config"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/handler"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/metrics"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/repository"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/usecase"
	"github.com/vasapolrittideah/secrets/shared/auth"
	"github.com/vasapolrittideah/secrets/shared/logger"
	"github.com/vasapolrittideah/secrets/shared/mongodb"
	"github.com/vasapolrittideah/secrets/shared/provider"
	"github.com/vasapolrittideah/secrets/shared/security"
	"github.com/vasapolrittideah/secrets/shared/validate"
)

const serviceName = "secrets-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(cfg *config.Config, log *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *mongo.Database
	if cfg.Store.Driver == "mongo" || cfg.Session.Store == "mongo" {
		client, err := mongodb.Connect(ctx, log, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to disconnect mongodb")
			}
		}()

		db = client.Database(cfg.Mongo.Database)
	}

	userRepo, err := newUserRepository(ctx, cfg, db)
	if err != nil {
		return err
	}

	sessionStore, closeStore, err := newSessionStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeStore()

	scsManager := scs.New()
	scsManager.Store = sessionStore
	scsManager.Lifetime = cfg.Session.Lifetime
	scsManager.Cookie.Name = cfg.Session.CookieName
	scsManager.Cookie.HttpOnly = true
	scsManager.Cookie.Secure = cfg.Session.CookieSecure
	scsManager.Cookie.SameSite = http.SameSiteLaxMode
	scsManager.ErrorFunc = handler.SessionErrorFunc(log)

	sessions := usecase.NewSessionManager(scsManager, userRepo, log)
	verifier := usecase.NewPasswordVerifier(
		userRepo,
		security.NewPasswordHasher(cfg.Password.TimeCost, cfg.Password.MemoryCost),
		log,
	)
	resolver := usecase.NewIdentityResolver(userRepo, log)

	strategies := []usecase.Strategy{usecase.NewLocalStrategy(verifier)}
	var providers []provider.OAuthProvider

	if cfg.Google.Enabled() {
		google := provider.NewGoogleOAuthProvider(provider.Config{
			ClientID:     cfg.Google.ID(),
			ClientSecret: cfg.Google.Secret(),
			CallbackURL:  cfg.Google.CallbackURL,
		})
		providers = append(providers, google)
		strategies = append(strategies, usecase.NewGoogleStrategy(google, resolver, cfg.OAuth.Timeout, log))
	}

	if cfg.Facebook.Enabled() {
		facebook := provider.NewFacebookOAuthProvider(provider.Config{
			ClientID:     cfg.Facebook.ID(),
			ClientSecret: cfg.Facebook.Secret(),
			CallbackURL:  cfg.Facebook.CallbackURL,
		})
		providers = append(providers, facebook)
		strategies = append(strategies, usecase.NewFacebookStrategy(facebook, resolver, cfg.OAuth.Timeout, log))
	}

	validator, err := validate.New()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.MustRegister(registry)

	router, err := handler.NewRouter(handler.Options{
		Auth:         usecase.NewAuthUsecase(verifier, sessions, log, strategies...),
		Secrets:      usecase.NewSecretUsecase(userRepo, log),
		Sessions:     sessions,
		Providers:    providers,
		State:        auth.NewStateSigner(serviceName, cfg.OAuth.StateSecret, cfg.OAuth.StateTTL),
		StateTTL:     cfg.OAuth.StateTTL,
		Validator:    validator,
		Store:        userRepo,
		Gatherer:     registry,
		CookieSecure: cfg.Session.CookieSecure,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func newUserRepository(ctx context.Context, cfg *config.Config, db *mongo.Database) (repository.UserRepository, error) {
	if cfg.Store.Driver == "memory" {
		return repository.NewUserMemoryRepository(), nil
	}

	repo, err := repository.NewUserMongoRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("create user repository: %w", err)
	}

	return repo, nil
}

func newSessionStore(
	ctx context.Context,
	cfg *config.Config,
	db *mongo.Database,
	log *zerolog.Logger,
) (scs.Store, func(), error) {
	switch cfg.Session.Store {
	case "memory":
		return memstore.New(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

		return repository.NewSessionRedisStore(client), func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close redis client")
			}
		}, nil

	default:
		store, err := repository.NewSessionMongoStore(ctx, db)
		if err != nil {
			return nil, nil, fmt.Errorf("create session store: %w", err)
		}

		return store, func() {}, nil
	}
}
