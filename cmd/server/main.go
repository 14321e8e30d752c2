package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/cache"
	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/engine"
	"github.com/haricode-hub/rfp-ofsaa/internal/handlers"
	"github.com/haricode-hub/rfp-ofsaa/internal/llm"
	"github.com/haricode-hub/rfp-ofsaa/internal/middleware"
	"github.com/haricode-hub/rfp-ofsaa/internal/search"
	"github.com/haricode-hub/rfp-ofsaa/internal/session"
	"github.com/haricode-hub/rfp-ofsaa/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second

	// Processing a large spreadsheet holds the request open for minutes,
	// so the write timeout has to be generous.
	serverReadTimeout  = 2 * time.Minute
	serverWriteTimeout = 30 * time.Minute
	serverIdleTimeout  = 60 * time.Second

	rateLimitPerMinute = 120
)

// App wires all components together and owns their lifecycle.
type App struct {
	config       *config.Config
	logger       *zap.Logger
	cache        *cache.EvidenceCache
	store        *session.Store
	retriever    *search.Retriever
	orchestrator *engine.Orchestrator
	server       *http.Server

	initOnce sync.Once
	initErr  error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	shutdownOnce sync.Once
}

// NewApp creates an empty application shell; Initialize does the real work.
func NewApp() *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{ctx: ctx, cancel: cancel}
}

// Initialize sets up every component exactly once. All-or-nothing: any
// failure leaves the app unusable.
func (a *App) Initialize() error {
	a.initOnce.Do(func() {
		a.initErr = a.doInitialize()
	})
	return a.initErr
}

func (a *App) doInitialize() error {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	if err := logger.Init("info", true); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.Get()

	configPath := os.Getenv("APP_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := config.Load(configPath); err != nil {
		a.logger.Warn("config file not loaded, using defaults and environment",
			zap.Error(err),
		)
		if err := config.Load(""); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}
	a.config = config.Get()

	// No request can succeed without LLM credentials, so fail at startup
	// rather than per-request.
	if a.config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is not configured (set APP_LLM_API_KEY or OPENAI_API_KEY)")
	}

	a.logger.Info("configuration loaded",
		zap.String("server_host", a.config.Server.Host),
		zap.Int("server_port", a.config.Server.Port),
		zap.String("llm_model", a.config.LLM.Model),
	)

	a.cache = cache.NewEvidenceCache(
		a.config.Search.CacheShards,
		a.config.Search.CacheCapacity,
	)
	a.store = session.NewStore()

	// Without search credentials the retriever runs in disabled mode and
	// every row is judged on the model's own knowledge.
	var tool search.ToolClient
	if a.config.Search.BaseURL != "" && a.config.Search.APIKey != "" {
		tool = search.NewHTTPToolClient(
			a.config.Search.BaseURL,
			a.config.Search.APIKey,
			time.Duration(a.config.Search.Timeout)*time.Second,
		)
	} else {
		a.logger.Warn("search tool not configured, web evidence retrieval is disabled")
	}
	a.retriever = search.NewRetriever(tool, a.cache, a.config.Search, a.logger)

	completer := llm.NewClient(a.config.LLM, a.logger)
	judge := engine.NewJudge(completer, a.config.Engine, a.logger)
	processor := engine.NewRowProcessor(a.retriever, judge, a.config.Engine, a.logger)
	a.orchestrator = engine.NewOrchestrator(processor, a.config.Engine, a.logger)

	a.initializeServer()

	a.logger.Info("application ready")
	return nil
}

// initializeServer builds the router and the HTTP server.
func (a *App) initializeServer() {
	presales := handlers.NewPresalesHandler(a.store, a.orchestrator, a.cache, a.config, a.logger)
	rfpHandler := handlers.NewRFPHandler(a.logger)

	r := chi.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rateLimitPerMinute, time.Minute)

	// Health and metrics skip the middleware chain so they stay fast and
	// reliable even under load.
	r.Get("/health", a.healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logging(a.logger))
		r.Use(middleware.Recovery(a.logger))
		r.Use(middleware.RateLimit(rateLimiter, a.logger))
		r.Use(middleware.BodyLimit(a.config.MaxFileSizeBytes() + 1024*1024))

		r.Route("/presales", func(r chi.Router) {
			r.Post("/upload", presales.Upload)
			r.Post("/process", presales.Process)
			r.Get("/download/{id}", presales.Download)
			r.Get("/cache-stats", presales.CacheStats)
			r.Post("/clear-cache", presales.ClearCache)
		})

		r.Post("/rfp/analyze", rfpHandler.Analyze)
	})

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}
}

// healthCheckHandler answers liveness probes.
func (a *App) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":            "ok",
		"timestamp":         time.Now().Unix(),
		"cache_entries":     a.cache.Len(),
		"llm_configured":    a.config.LLM.APIKey != "",
		"search_configured": a.config.Search.BaseURL != "" && a.config.Search.APIKey != "",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// Start initializes the app and begins serving in a background goroutine.
func (a *App) Start() error {
	if err := a.Initialize(); err != nil {
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info("starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("server failed", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown stops the server gracefully, letting in-flight requests finish.
func (a *App) Shutdown() error {
	var shutdownErr error

	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down...")

		a.cancel()

		if a.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := a.server.Shutdown(ctx); err != nil {
				a.logger.Error("server shutdown error", zap.Error(err))
				shutdownErr = err
			}
			cancel()
		}

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			a.logger.Info("shutdown complete")
		case <-time.After(shutdownTimeout):
			a.logger.Warn("shutdown timed out waiting for goroutines")
		}

		_ = logger.Sync()
	})

	return shutdownErr
}

func main() {
	app := NewApp()

	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	if err := app.Shutdown(); err != nil {
		os.Exit(1)
	}
}
