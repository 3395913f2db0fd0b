package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blackstar01-dark/mueblix/internal/auth"
	"github.com/blackstar01-dark/mueblix/internal/catalog"
	"github.com/blackstar01-dark/mueblix/internal/config"
	h "github.com/blackstar01-dark/mueblix/internal/http"
	"github.com/blackstar01-dark/mueblix/internal/logger"
	"github.com/blackstar01-dark/mueblix/internal/metrics"
	"github.com/blackstar01-dark/mueblix/internal/order"
	"github.com/blackstar01-dark/mueblix/internal/remote"
	"github.com/blackstar01-dark/mueblix/internal/session"
	"github.com/blackstar01-dark/mueblix/internal/state"
	"github.com/blackstar01-dark/mueblix/internal/storage"
	"github.com/blackstar01-dark/mueblix/internal/tokenstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel)

	kv, err := openStorage(cfg, log)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer kv.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	remoteClient, err := remote.NewClient(remote.Options{
		BaseURL:         cfg.APIURL,
		RateLimit:       cfg.RemoteRateLimit,
		RateBurst:       cfg.RemoteRateBurst,
		BreakerFailures: uint32(cfg.BreakerFailures),
		BreakerTimeout:  cfg.BreakerTimeout,
		Metrics:         m,
		Logger:          log,
	})
	if err != nil {
		log.Fatalf("Failed to create remote client: %v", err)
	}

	st := state.New(tokenstore.New(kv), session.NewDecoder())
	restoreCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	identity, err := st.Restore(restoreCtx)
	cancel()
	switch {
	case err != nil:
		log.WithError(err).Warn("stored session could not be restored, starting signed out")
	case identity != nil:
		log.WithField("user_id", identity.ID).Info("session restored")
	}

	products := catalog.NewClient(remoteClient)
	authService := auth.NewService(remoteClient, st)
	submitter := order.NewSubmitter(remoteClient, kv, m, log)

	router := h.NewRouter(h.RouterConfig{
		Catalog:        h.NewCatalogHandler(products, cfg.CatalogPageLimit, cfg.RequestTimeout),
		Auth:           h.NewAuthHandler(authService, cfg.RequestTimeout),
		Profile:        h.NewProfileHandler(st),
		Cart:           h.NewCartHandler(st, products, m, cfg.RequestTimeout),
		Orders:         h.NewOrderHandler(submitter, st, cfg.RequestTimeout),
		Session:        st,
		Metrics:        reg,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Storefront gateway starting on :%s (api %s)", cfg.HTTPPort, cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}

func openStorage(cfg *config.Config, log logrus.FieldLogger) (storage.KV, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("using redis storage")
		return storage.NewRedisStore(client, "mueblix"), nil

	case config.BackendMemory:
		log.Warn("using in-memory storage, the session is lost on exit")
		return storage.NewMemoryStore(), nil

	default:
		store, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(); err != nil {
			store.Close()
			return nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("using sqlite storage")
		return store, nil
	}
}
