// Package main provides the chatbot server entry point.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/unsta/chatbot-go/internal/buildinfo"
	"github.com/unsta/chatbot-go/internal/chat"
	"github.com/unsta/chatbot-go/internal/config"
	"github.com/unsta/chatbot-go/internal/convo"
	"github.com/unsta/chatbot-go/internal/embedding"
	"github.com/unsta/chatbot-go/internal/faq"
	"github.com/unsta/chatbot-go/internal/logger"
	"github.com/unsta/chatbot-go/internal/matcher"
	"github.com/unsta/chatbot-go/internal/metrics"
	"github.com/unsta/chatbot-go/internal/ratelimit"
	"github.com/unsta/chatbot-go/internal/responder"
	"github.com/unsta/chatbot-go/internal/sentry"
	"github.com/unsta/chatbot-go/internal/storage"
	"github.com/unsta/chatbot-go/internal/warmup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log.WithField("version", buildinfo.Version).Info("Starting chatbot server")

	// Initialize Sentry (optional)
	sentryEnabled, err := sentry.Initialize(cfg.SentryDSN, cfg.SentryEnvironment)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without it")
	} else if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry initialized")
	}

	// Open the embedding cache database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry with standard collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Load static FAQ data; missing or malformed files are fatal
	corpus, err := faq.LoadCorpus(cfg.IntentsPath())
	if err != nil {
		log.WithError(err).Fatal("Failed to load intent corpus")
	}
	responses, err := faq.LoadResponses(cfg.ResponsesPath())
	if err != nil {
		log.WithError(err).Fatal("Failed to load FAQ responses")
	}
	extras, err := faq.LoadExtras(cfg.ExtrasPath())
	if err != nil {
		log.WithError(err).Fatal("Failed to load extras")
	}
	log.WithField("intents", corpus.Len()).Info("FAQ data loaded")

	// Create the embedding encoder behind a bounded worker pool
	baseEncoder, err := embedding.NewFromConfig(context.Background(), cfg, m)
	if err != nil {
		log.WithError(err).Fatal("Failed to create embedding encoder")
	}
	encoder := embedding.NewPool(baseEncoder, cfg.EncodeWorkers, cfg.EncodeTimeout)
	log.WithField("provider", cfg.EmbeddingProvider).
		WithField("model", encoder.Model()).
		WithField("workers", cfg.EncodeWorkers).
		Info("Embedding encoder created")

	// Warm up the corpus embeddings (cache or recompute)
	readiness := warmup.NewReadinessState()
	warmupCtx, warmupCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	corpusVectors, err := warmup.EnsureCorpusEmbeddings(warmupCtx, log, db, encoder, corpus, m)
	warmupCancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare corpus embeddings")
	}
	readiness.MarkReady()

	intentMatcher := matcher.New(encoder, corpusVectors, m)

	// Per-user conversation context with TTL eviction
	contextStore := convo.NewStore(convo.Config{
		TTL:           cfg.ContextTTL,
		CleanupPeriod: cfg.ContextCleanupInterval,
		MaxEntries:    cfg.ContextMaxEntries,
		OnUpdate:      m.SetContextStoreEntries,
		OnEvict:       m.RecordContextEvicted,
	})
	defer contextStore.Stop()

	composer := responder.New(
		intentMatcher,
		responses,
		extras,
		contextStore,
		responder.Config{
			SocialThreshold:   cfg.SocialThreshold,
			MetaThreshold:     cfg.MetaThreshold,
			AcademicThreshold: cfg.AcademicThreshold,
			ContextKeywords:   cfg.ContextKeywords,
		},
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	// Per-user request rate limiting, disabled when burst is zero or less
	var userLimiter *ratelimit.KeyedLimiter
	if cfg.RateLimitBurst > 0 {
		userLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
			Name:          "user",
			Burst:         float64(cfg.RateLimitBurst),
			RefillRate:    1 / cfg.RateLimitInterval.Seconds(),
			CleanupPeriod: 5 * time.Minute,
			OnDrop:        m.RecordRateLimiterDrop,
			OnUpdate:      m.SetRateLimiterActive,
		})
		defer userLimiter.Stop()
	}

	chatHandler := chat.NewHandler(composer, userLimiter, m, log)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	setupRoutes(router, cfg, chatHandler, db, readiness, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
