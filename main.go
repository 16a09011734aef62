package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"recipehub/auth"
	"recipehub/comments"
	"recipehub/config"
	"recipehub/db"
	"recipehub/db/memdb"
	"recipehub/feed"
	"recipehub/filemgr"
	"recipehub/middleware"
	"recipehub/profile"
	"recipehub/ratelim"
	"recipehub/rdx"
	"recipehub/recipes"
	"recipehub/routes"
	"recipehub/utils"
)

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown log level; using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// withCORS allows the configured origins. Tokens travel in the
// Authorization header, so credentialed requests are not enabled.
func withCORS(origins []string, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(next)
}

// openStorage returns the store and a health probe for it.
func openStorage(ctx context.Context, cfg *config.Config) (db.Storage, func(context.Context) error, error) {
	if cfg.StorageDriver == config.DriverMemory {
		logrus.Warn("using in-memory storage; data is lost on restart")
		return memdb.New(), nil, nil
	}
	store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, nil, err
	}
	return store, func(ctx context.Context) error { return store.Client.Ping(ctx, nil) }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	setupLogging(cfg)
	utils.ExposeErrorDetails = !cfg.IsProduction()
	if cfg.UsingDevSecret() {
		logrus.Warn("JWT_SECRET not set; using the development secret")
	}
	logrus.Infof("starting with %s", cfg)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, storeHealth, err := openStorage(startCtx, cfg)
	cancel()
	if err != nil {
		logrus.WithError(err).Fatal("storage unavailable")
	}

	// A nil *rdx.Cache must not end up inside the auth.KV interface.
	var kv auth.KV
	var cache *rdx.Cache
	if cfg.RedisAddr != "" {
		cache = rdx.New(rdx.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			logrus.WithError(err).Warn("redis unreachable; revocations fall back to storage")
		}
		cancel()
		kv = cache
	}

	hasher := auth.NewHasher(bcrypt.DefaultCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration)
	revocations := auth.NewRevocationList(store, kv, tokens)
	images := filemgr.New(filepath.Join(cfg.StaticDir, "recipes"), "/static/recipes")
	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := routes.New(routes.Deps{
		Auth:        auth.NewService(store, hasher, tokens, revocations),
		Tokens:      tokens,
		Revocations: revocations,
		Profiles:    profile.NewService(store, hasher),
		Recipes:     recipes.NewService(store, images, cfg.PublicURL),
		Comments:    comments.NewService(store),
		Feed:        feed.NewComposer(store, store, cfg.FeedMaxLimit),
		RateLimiter: rateLimiter,
		StaticDir:   cfg.StaticDir,
		Health:      storeHealth,
	})

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           middleware.Logging(middleware.SecurityHeaders(withCORS(cfg.CORSOrigins, router))),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		rateLimiter.Stop()
	})

	go func() {
		logrus.Infof("server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("ListenAndServe")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logrus.Info("shutdown signal received; shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			logrus.WithError(err).Warn("close redis")
		}
	}
	if err := store.Close(ctx); err != nil {
		logrus.WithError(err).Warn("close storage")
	}
	logrus.Info("server stopped cleanly")
}
