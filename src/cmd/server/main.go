package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/controller"
	"github.com/api-sage/bank-one-one/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-one-one/src/internal/adapter/http/router"
	"github.com/api-sage/bank-one-one/src/internal/adapter/llm"
	"github.com/api-sage/bank-one-one/src/internal/adapter/mailer"
	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/postgres"
	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/bank-one-one/src/internal/config"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/api-sage/bank-one-one/src/internal/security"
	"github.com/api-sage/bank-one-one/src/internal/telemetry"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

const (
	serviceName          = "bank-one-one"
	startupTimeout       = 30 * time.Second
	transferRetryBackoff = 50 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTELEnabled, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", err, nil)
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	store, err := openStore(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("store close failed", err, nil)
		}
	}()

	handler := buildHandler(cfg, store)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", logger.Fields{
			"addr":        srv.Addr,
			"storeDriver": cfg.StoreDriver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped", nil)
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (domain.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := postgres.RunMigrations(ctx, store.DB()); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return store, nil
	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		logger.Warn("using in-memory store, data is lost on restart", nil)
		return memory.NewStore(), nil
	}
}

func buildHandler(cfg config.Config, store domain.Store) http.Handler {
	accounts := store.Accounts()
	transactions := store.Transactions()
	users := store.Users()

	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	accountService := services.NewAccountService(accounts, transactions, users)
	transferService := services.NewTransferService(store, accounts, users, services.TransferOptions{
		MaxAttempts:    cfg.TransferMaxAttempts,
		AttemptTimeout: cfg.TransferTimeout,
		RetryBackoff:   transferRetryBackoff,
	})
	transactionService := services.NewTransactionService(transactions, users)
	authService := services.NewAuthService(users, accountService, tokens, newMailer(cfg), services.AuthOptions{
		AppBaseURL:      cfg.AppBaseURL,
		FrontendBaseURL: cfg.FrontendBaseURL,
	})
	assistantService := services.NewAssistantService(newChatModel(cfg), services.NewToolbox(accounts, transactions, users))

	userMiddleware := func(next http.Handler) http.Handler {
		return middleware.Chain(next, middleware.Authenticate(tokens), middleware.RequireVerifiedUser(authService))
	}

	return router.New(router.Controllers{
		Health:      controller.NewHealthController(),
		Auth:        controller.NewAuthController(authService),
		Account:     controller.NewAccountController(accountService),
		Transaction: controller.NewTransactionController(transferService, transactionService),
		Chat:        controller.NewChatController(assistantService, tokens, authService, cfg.CORSOrigins),
		Admin:       controller.NewAdminController(accountService),
	}, router.Middlewares{
		User:   userMiddleware,
		Admin:  middleware.BasicAuth(cfg.AdminChannelID, cfg.AdminChannelKey),
		Global: []func(http.Handler) http.Handler{middleware.CORS(cfg.CORSOrigins)},
	})
}

func newMailer(cfg config.Config) services.Mailer {
	if cfg.BrevoAPIKey == "" {
		logger.Warn("BREVO_API_KEY not set, emails are logged instead of sent", nil)
		return mailer.NewLoggingMailer()
	}
	return mailer.NewBrevoMailer(mailer.BrevoConfig{
		APIKey:     cfg.BrevoAPIKey,
		FromEmail:  cfg.MailFrom,
		FromName:   cfg.MailFromName,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	})
}

// newChatModel returns a nil interface when no key is configured so the
// assistant answers with its "not configured" reply.
func newChatModel(cfg config.Config) services.ChatModel {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, assistant is disabled", nil)
		return nil
	}
	return llm.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIModel)
}
