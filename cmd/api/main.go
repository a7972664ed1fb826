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

	"simpleshop/internal/catalog"
	"simpleshop/internal/config"
	"simpleshop/internal/database"
	"simpleshop/internal/handler"
	"simpleshop/internal/notify"
	"simpleshop/internal/payment"
	"simpleshop/internal/repository"
	"simpleshop/internal/router"
	"simpleshop/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "simpleshop")
	logger.Info().Msg("starting simpleshop API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	sequencer := repository.NewOrderSequencer(cfg.Checkout.LockTimeout, logger)

	cartRepo, closeCart, err := newCartRepository(ctx, cfg, pool, logger)
	if err != nil {
		return err
	}
	defer closeCart()

	if cfg.Catalog.ImportOnStart {
		if err := importCatalog(ctx, cfg, productRepo, logger); err != nil {
			return err
		}
	}

	dispatcher, closeDispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	notifier := notify.NewAsync(userRepo, dispatcher, cfg.Notification.Timeout, logger)
	gateway := payment.NewRazorpayClient(cfg.Payment, logger)

	// Services
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, sequencer, productRepo, addressRepo, cartRepo, notifier, logger)
	paymentService := service.NewPaymentService(orderRepo, gateway, cfg.Payment.Currency, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	addressService := service.NewAddressService(addressRepo, logger)

	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Payment: handler.NewPaymentHandler(paymentService, logger),
		Address: handler.NewAddressHandler(addressService, logger),
	}, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// In-flight confirmations finish before the broker connection closes.
		if err := notifier.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("pending order confirmations abandoned")
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	return g.Wait()
}

func newCartRepository(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (repository.CartRepository, func(), error) {
	if cfg.Cart.Backend != config.CartBackendRedis {
		logger.Info().Msg("using postgres cart storage")
		return repository.NewCartRepository(pool, logger), func() {}, nil
	}

	client, err := repository.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis cart storage")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return repository.NewRedisCartRepository(client, logger), closeFn, nil
}

func newDispatcher(cfg *config.Config, logger zerolog.Logger) (notify.Dispatcher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info().Msg("order confirmations are logged only (RabbitMQ disabled)")
		return notify.NewLogDispatcher(logger), func() {}, nil
	}

	publisher, err := notify.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize rabbitmq publisher: %w", err)
	}

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close rabbitmq publisher")
		}
	}
	return publisher, closeFn, nil
}

func importCatalog(ctx context.Context, cfg *config.Config, store catalog.Store, logger zerolog.Logger) error {
	fileLoader := catalog.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	}

	result, err := catalog.NewImporter(loader, store, logger).Import(ctx, cfg.Catalog.FeedPaths)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	logger.Info().
		Int("loaded", result.Loaded).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("catalog import completed")
	return nil
}
