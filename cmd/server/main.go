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

	"cloud.google.com/go/firestore"
	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/advisor"
	"github.com/finpersona/backend/internal/anomaly"
	"github.com/finpersona/backend/internal/auth"
	"github.com/finpersona/backend/internal/config"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/llm"
	"github.com/finpersona/backend/internal/logger"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/finpersona/backend/internal/scenario"
	"github.com/finpersona/backend/internal/service"
	"github.com/finpersona/backend/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.IsLocal())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("Server exited")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}

// run serves until ctx is cancelled. Resources it opens are released before it
// returns, on success or failure.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	storeImpl, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize %s store: %w", cfg.StoreBackend, err)
	}
	defer closeStore()

	interceptors, err := newInterceptors(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize %s auth: %w", cfg.AuthMode, err)
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize %s AI provider: %w", cfg.AI.Provider, err)
	}
	interpreter, adv := newAIPipelines(cfg, gen, log)

	detector := anomaly.NewDetector(anomaly.Config{
		LargeTransactionFloor: cfg.LargeTransactionFloor,
		CurrencySymbol:        cfg.CurrencySymbol,
	})

	insightService := service.NewInsightService(storeImpl, detector, interpreter, adv, service.Config{
		LookbackDays: cfg.AnomalyLookbackDays,
		DefaultSnapshot: domain.FinancialSnapshot{
			MonthlyIncome:   cfg.DefaultMonthlyIncome,
			MonthlyExpenses: cfg.DefaultMonthlyExpenses,
			CurrentSavings:  cfg.DefaultCurrentSavings,
		},
	}, log)

	path, handler := rpc.NewInsightServiceHandler(
		insightService,
		connect.WithInterceptors(interceptors...),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(log))

	r.Mount(path, handler)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"User-Agent",
			"X-User-Agent",
			"X-Debug-Impersonate-User",
		},
		ExposedHeaders: []string{
			"Grpc-Status",
			"Grpc-Message",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(c.Handler(r), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Env).
		Str("store", cfg.StoreBackend).
		Str("auth", cfg.AuthMode).
		Str("ai", cfg.AI.Provider).
		Msg("Starting server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// openStore is swapped in tests.
var openStore = newStore

func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite store")
		return s, func() { s.Close() }, nil

	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("create Firestore client: %w", err)
		}
		log.Info().Str("project", cfg.ProjectID).Msg("Using Firestore store")
		return store.NewFirestoreStore(client), func() { client.Close() }, nil

	default:
		log.Info().Msg("Using in-memory store for local development")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func newInterceptors(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]connect.Interceptor, error) {
	// Debug impersonation runs first so the auth interceptors can see its claims.
	interceptors := []connect.Interceptor{auth.DebugAuthInterceptor(cfg.IsLocal())}

	switch cfg.AuthMode {
	case config.AuthFirebase:
		firebaseAuth, err := auth.NewFirebaseAuth(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		interceptors = append(interceptors, auth.AuthInterceptor(firebaseAuth))
	case config.AuthJWT:
		interceptors = append(interceptors, auth.AuthInterceptor(auth.NewJWTAuth(cfg.JWTSecret)))
	default:
		log.Warn().Str("user_id", auth.LocalDevUserID).Msg("Using mock authentication for local development")
		interceptors = append(interceptors, auth.LocalDevInterceptor())
	}
	return interceptors, nil
}

func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.AI.Provider {
	case config.AIGemini:
		g, err := llm.NewGeminiGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.AIOpenAI:
		return llm.NewOpenAIGenerator(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIBaseURL, cfg.AI.OpenAIModel), nil
	default:
		return nil, nil
	}
}

// newAIPipelines puts the scenario interpreter and the chat advisor behind one
// shared rate limit. Without a generator both answer from keyword rules.
func newAIPipelines(cfg *config.Config, gen llm.Generator, log zerolog.Logger) (scenario.Interpreter, advisor.Advisor) {
	interpreter := scenario.NewFallbackInterpreter(cfg.CurrencySymbol)
	adv := advisor.NewFallbackAdvisor(cfg.CurrencySymbol)
	if gen == nil {
		log.Info().Msg("No AI provider configured, scenarios and chat use keyword rules")
		return interpreter, adv
	}

	limited := llm.NewRateLimited(gen, cfg.AI.RatePerMinute, 1)
	primary := scenario.NewAIInterpreter(
		limited,
		log,
		scenario.WithCacheTTL(cfg.AI.CacheTTL),
		scenario.WithCurrencySymbol(cfg.CurrencySymbol),
	)
	return scenario.WithFallback(primary, interpreter, cfg.AI.Timeout, log),
		advisor.WithFallback(advisor.NewAIAdvisor(limited, cfg.CurrencySymbol, log), adv, cfg.AI.Timeout, log)
}
