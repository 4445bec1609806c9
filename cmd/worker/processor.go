package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/imrishuroy/avenge-storefront/internal/aws"
	"github.com/imrishuroy/avenge-storefront/internal/checkout"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var errMissingOrderNumber = errors.New("placed event has no order number")

// Processor turns checkout placed events into order metrics, once per order number.
type Processor struct {
	receipts receiptStore
	metrics  metricEmitter
	log      zerolog.Logger
}

// NewProcessor creates a new worker processor with its collaborators injected.
func NewProcessor(receipts receiptStore, emitter metricEmitter, log zerolog.Logger) *Processor {
	return &Processor{
		receipts: receipts,
		metrics:  emitter,
		log:      log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	p.log.Debug().Int("records", len(ev.Records)).Msg("received sqs batch")
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Lambda retries the batch; repeated failures land in the DLQ
			p.log.Error().Err(err).Str("message_id", rec.MessageId).Msg("worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg checkout.PlacedEvent
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.OrderNumber == "" {
		return errMissingOrderNumber
	}
	total, err := decimal.NewFromString(msg.Total)
	if err != nil {
		return fmt.Errorf("invalid order total %q: %w", msg.Total, err)
	}

	log := p.log.With().
		Str("order_number", msg.OrderNumber).
		Str("correlation_id", msg.CorrelationID).
		Logger()

	key := receiptKey(msg.OrderNumber)
	created, err := p.receipts.CreateIfNotExists(ctx, key, msg.SessionID)
	if err != nil {
		return fmt.Errorf("claim receipt: %w", err)
	}
	if !created {
		log.Info().Msg("duplicate placed event, skipping")
		return nil
	}

	err = p.metrics.Emit(ctx, map[string]string{"Service": "storefront"},
		aws.Metric{Name: metricOrdersPlaced, Value: 1},
		aws.Metric{Name: metricOrderValue, Value: total.InexactFloat64(), Unit: cwtypes.StandardUnitNone},
		aws.Metric{Name: metricItemsSold, Value: float64(msg.ItemCount)},
	)
	if err != nil {
		if markErr := p.receipts.MarkFailed(ctx, key, err.Error()); markErr != nil {
			log.Error().Err(markErr).Msg("failed to release receipt")
		}
		return fmt.Errorf("emit order metrics: %w", err)
	}

	response := fmt.Sprintf(`{"order_number":%q,"status":"RECORDED"}`, msg.OrderNumber)
	if err := p.receipts.MarkDone(ctx, key, response, http.StatusOK); err != nil {
		return fmt.Errorf("failed to update idempotency: %w", err)
	}

	log.Info().Int("items", msg.ItemCount).Str("total", msg.Total).Msg("order recorded")
	return nil
}

func receiptKey(orderNumber string) string {
	return "receipt:" + orderNumber
}
