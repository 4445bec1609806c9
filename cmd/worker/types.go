package main

import (
	"context"

	"github.com/imrishuroy/avenge-storefront/internal/aws"
)

// CloudWatch metric names emitted per placed order.
const (
	metricOrdersPlaced = "OrdersPlaced"
	metricOrderValue   = "OrderValue"
	metricItemsSold    = "ItemsSold"
)

// receiptStore is the slice of the idempotency store the worker needs.
type receiptStore interface {
	CreateIfNotExists(ctx context.Context, key, reference string) (bool, error)
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

type metricEmitter interface {
	Emit(ctx context.Context, dimensions map[string]string, metrics ...aws.Metric) error
}
