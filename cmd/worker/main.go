package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/imrishuroy/avenge-storefront/internal/aws"
	"github.com/imrishuroy/avenge-storefront/internal/config"
	"github.com/imrishuroy/avenge-storefront/internal/idempotency"
	"github.com/imrishuroy/avenge-storefront/internal/logging"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(logging.Options{
		ServiceName: "storefront-worker",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
	})

	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init aws clients")
	}

	var receipts receiptStore
	if cfg.Checkout.IdempotencyTable != "" {
		receipts = idempotency.NewStore(clients.DynamoDB, cfg.Checkout.IdempotencyTable, cfg.Checkout.IdempotencyTTL)
	} else {
		logger.Warn().Msg("no idempotency table configured, receipts are deduplicated in process only")
		receipts = idempotency.NewMemory(cfg.Checkout.IdempotencyTTL)
	}

	p := NewProcessor(receipts, aws.NewMetricEmitter(clients.CloudWatch, cfg.Metrics.Namespace), logger)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.App.RunLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_number":"local-order-1","session_id":"local-session","item_count":1,"subtotal":"100.00","total":"123.00"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: testBody}},
		}
		if err := p.Handle(ctx, event); err != nil {
			logger.Fatal().Err(err).Msg("local handler error")
		}
		return
	}

	lambda.Start(p.Handle)
}
