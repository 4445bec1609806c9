package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/avenge-storefront/internal/aws"
	"github.com/imrishuroy/avenge-storefront/internal/cart"
	"github.com/imrishuroy/avenge-storefront/internal/catalog"
	"github.com/imrishuroy/avenge-storefront/internal/checkout"
	"github.com/imrishuroy/avenge-storefront/internal/config"
	"github.com/imrishuroy/avenge-storefront/internal/handlers"
	"github.com/imrishuroy/avenge-storefront/internal/idempotency"
	"github.com/imrishuroy/avenge-storefront/internal/logging"
	"github.com/imrishuroy/avenge-storefront/internal/metrics"
	"github.com/imrishuroy/avenge-storefront/internal/slot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func setupRouter(cfg handlers.HandlerConfig, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(cfg.Logger))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(r, cfg)

	return r
}

// openSlot builds the cart slot for the configured backend. The returned func releases it.
func openSlot(ctx context.Context, cfg config.SlotConfig, clients *aws.AWSClients) (slot.Slot, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.SlotDynamoDB:
		return slot.NewDynamo(clients.DynamoDB, cfg.Table), noop, nil
	case config.SlotRedis:
		r, err := slot.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return r, r.Close, nil
	case config.SlotSQLite:
		s, err := slot.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.SlotMemory:
		return slot.NewMemory(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown slot backend %q", cfg.Backend)
	}
}

func idempotencyStore(cfg config.CheckoutConfig, clients *aws.AWSClients, logger zerolog.Logger) checkout.IdempotencyStore {
	if cfg.IdempotencyTable == "" {
		logger.Warn().Msg("no idempotency table configured, checkout keys are tracked in process only")
		return idempotency.NewMemory(cfg.IdempotencyTTL)
	}
	return idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(logging.Options{
		ServiceName: "storefront-api",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
	})
	if !cfg.App.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init aws clients")
	}

	sl, closeSlot, err := openSlot(ctx, cfg.Slot, clients)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Slot.Backend).Msg("failed to open cart slot")
	}
	defer func() {
		if err := closeSlot(); err != nil {
			logger.Error().Err(err).Msg("failed to close cart slot")
		}
	}()

	cat, err := catalog.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	carts := cart.NewProvider(sl, cfg.Slot.Namespace, cfg.Cart.CacheTTL,
		cart.WithLogger(logger),
		cart.WithMetrics(metrics.NewCartMetrics(reg)),
	)
	svc := checkout.NewService(
		idempotencyStore(cfg.Checkout, clients, logger),
		aws.NewPublisher(clients.SQS, cfg.Checkout.QueueURL),
		checkout.WithDelay(cfg.Checkout.Delay),
		checkout.WithLogger(logger),
		checkout.WithMetrics(metrics.NewCheckoutMetrics(reg)),
	)

	r := setupRouter(handlers.HandlerConfig{
		Catalog:  cat,
		Carts:    carts,
		Checkout: svc,
		Logger:   logger,
	}, reg)

	if cfg.App.RunLocal {
		if err := runLocal(ctx, cfg.App.HTTPAddr, r, logger); err != nil {
			logger.Error().Err(err).Msg("local server stopped")
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

// runLocal serves the router until SIGINT/SIGTERM, then drains in-flight requests.
func runLocal(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("running local server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
