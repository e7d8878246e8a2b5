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

	"go.uber.org/zap"

	"github.com/techstore-sa/api/internal/handlers"
	"github.com/techstore-sa/api/internal/insurance"
	"github.com/techstore-sa/api/internal/mail"
	"github.com/techstore-sa/api/internal/platform/config"
	"github.com/techstore-sa/api/internal/platform/observability"
	platformpg "github.com/techstore-sa/api/internal/platform/postgres"
	pgrepo "github.com/techstore-sa/api/internal/repositories/postgres"
	"github.com/techstore-sa/api/internal/services"
	"github.com/techstore-sa/api/internal/whatsapp"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("missing required configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	provider, err := platformpg.NewProvider(ctx, platformpg.ProviderConfig{DSN: cfg.Database.DSN()})
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer provider.Close()

	if err := pgrepo.Migrate(ctx, provider.Pool()); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	registry, err := pgrepo.NewRegistry(provider.Pool())
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	rootClient, err := insurance.NewRootClient(insurance.RootClientConfig{
		BaseURL: cfg.Root.BaseURL,
		APIKey:  cfg.Root.APIKey,
		Logger:  observability.EventLogger(logger.Named("root")),
	})
	if err != nil {
		logger.Fatal("failed to initialise insurance client", zap.Error(err))
	}

	var mailer *mail.Mailer
	if cfg.SMTP.Enabled() {
		mailer, err = mail.NewMailer(mail.MailerConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			From:               cfg.SMTP.From,
			PaymentLinkBaseURL: cfg.Store.PaymentLinkBaseURL,
			Logger:             observability.EventLogger(logger.Named("mail")),
		})
		if err != nil {
			logger.Fatal("failed to initialise mailer", zap.Error(err))
		}
	} else {
		logger.Warn("smtp not configured; payment link emails disabled")
	}

	whatsappService, err := whatsapp.NewService(whatsapp.ServiceConfig{
		PaymentLinkBaseURL: cfg.Store.PaymentLinkBaseURL,
		Logger:             observability.EventLogger(logger.Named("whatsapp")),
	})
	if err != nil {
		logger.Fatal("failed to initialise whatsapp service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: registry.Products(),
		Logger:   observability.EventLogger(logger.Named("catalog")),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders: registry.Orders(),
		Logger: observability.EventLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	policyholderService, err := services.NewPolicyholderService(services.PolicyholderServiceDeps{
		Insurance: rootClient,
		Logger:    observability.EventLogger(logger.Named("policyholders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise policyholder service", zap.Error(err))
	}

	checkoutDeps := services.CheckoutServiceDeps{
		Orders:        registry.Orders(),
		Policyholders: policyholderService,
		Insurance:     rootClient,
		WhatsApp:      whatsappService,
		BillingDay:    cfg.Store.BillingDay,
		Logger:        observability.EventLogger(logger.Named("checkout")),
	}
	if mailer != nil {
		checkoutDeps.Mailer = mailer
	}
	checkoutService, err := services.NewCheckoutService(checkoutDeps)
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	quoteService, err := services.NewQuoteService(services.QuoteServiceDeps{
		Insurance: rootClient,
		Excess:    cfg.Store.QuoteExcess,
		AreaCode:  cfg.Store.QuoteAreaCode,
		Logger:    observability.EventLogger(logger.Named("quotes")),
	})
	if err != nil {
		logger.Fatal("failed to initialise quote service", zap.Error(err))
	}

	policyService, err := services.NewPolicyService(services.PolicyServiceDeps{
		Orders:     registry.Orders(),
		Insurance:  rootClient,
		BillingDay: cfg.Store.BillingDay,
		Logger:     observability.EventLogger(logger.Named("policies")),
	})
	if err != nil {
		logger.Fatal("failed to initialise policy service", zap.Error(err))
	}

	claimsService, err := services.NewClaimsService(services.ClaimsServiceDeps{
		Claims:    registry.Claims(),
		Products:  registry.Products(),
		Insurance: rootClient,
		Logger:    observability.EventLogger(logger.Named("claims")),
	})
	if err != nil {
		logger.Fatal("failed to initialise claims service", zap.Error(err))
	}

	catalogHandlers := handlers.NewCatalogHandlers(catalogService)
	orderHandlers := handlers.NewOrderHandlers(checkoutService, orderService)
	insuranceHandlers := handlers.NewInsuranceHandlers(quoteService, policyholderService, policyService, orderService)
	claimHandlers := handlers.NewClaimHandlers(claimsService)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("postgres", func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return provider.Pool().Ping(pingCtx)
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RecoveryMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithInsuranceRoutes(insuranceHandlers.Routes),
		handlers.WithClaimsRoutes(claimHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("techstore api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
