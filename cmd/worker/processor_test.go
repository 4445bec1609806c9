package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/imrishuroy/avenge-storefront/internal/aws"
	"github.com/imrishuroy/avenge-storefront/internal/checkout"
	"github.com/imrishuroy/avenge-storefront/internal/idempotency"
	"github.com/rs/zerolog"
)

// --- mock implementations ---

type mockEmitter struct {
	calls [][]aws.Metric
	err   error
}

func (m *mockEmitter) Emit(ctx context.Context, dimensions map[string]string, metrics ...aws.Metric) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, metrics)
	return nil
}

func placedEvent(t *testing.T, orderNumber string) events.SQSEvent {
	t.Helper()
	body, err := json.Marshal(checkout.PlacedEvent{
		OrderNumber: orderNumber,
		SessionID:   "s1",
		ItemCount:   3,
		Subtotal:    "100.00",
		Total:       "123.00",
		PlacedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return events.SQSEvent{Records: []events.SQSMessage{{MessageId: "m1", Body: string(body)}}}
}

// --- test cases ---

func TestWorkerProcess_Success(t *testing.T) {
	receipts := idempotency.NewMemory(time.Hour)
	emitter := &mockEmitter{}
	p := NewProcessor(receipts, emitter, zerolog.Nop())

	if err := p.Handle(context.Background(), placedEvent(t, "o1")); err != nil {
		t.Fatalf("unexpected worker error: %v", err)
	}
	if len(emitter.calls) != 1 {
		t.Fatalf("expected one emit, got %d", len(emitter.calls))
	}
	got := map[string]float64{}
	for _, m := range emitter.calls[0] {
		got[m.Name] = m.Value
	}
	if got[metricOrdersPlaced] != 1 || got[metricOrderValue] != 123 || got[metricItemsSold] != 3 {
		t.Fatalf("unexpected metrics %+v", got)
	}

	rec, _ := receipts.Get(context.Background(), receiptKey("o1"))
	if !rec.Done() {
		t.Fatalf("expected receipt DONE, got %+v", rec)
	}
}

func TestWorkerProcess_DuplicateIsSkipped(t *testing.T) {
	emitter := &mockEmitter{}
	p := NewProcessor(idempotency.NewMemory(time.Hour), emitter, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := p.Handle(context.Background(), placedEvent(t, "o1")); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}
	if len(emitter.calls) != 1 {
		t.Fatalf("expected metrics once, got %d", len(emitter.calls))
	}
}

func TestWorkerProcess_MalformedBody(t *testing.T) {
	p := NewProcessor(idempotency.NewMemory(time.Hour), &mockEmitter{}, zerolog.Nop())

	for name, body := range map[string]string{
		"not json":        `{"order_number":`,
		"no order number": `{"total":"1.00"}`,
		"bad total":       `{"order_number":"o1","total":"abc"}`,
	} {
		ev := events.SQSEvent{Records: []events.SQSMessage{{Body: body}}}
		if err := p.Handle(context.Background(), ev); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWorkerProcess_EmitFailureAllowsRetry(t *testing.T) {
	receipts := idempotency.NewMemory(time.Hour)
	emitter := &mockEmitter{err: errors.New("cloudwatch unavailable")}
	p := NewProcessor(receipts, emitter, zerolog.Nop())

	if err := p.Handle(context.Background(), placedEvent(t, "o2")); err == nil {
		t.Fatal("expected emit failure to surface")
	}
	rec, _ := receipts.Get(context.Background(), receiptKey("o2"))
	if rec == nil || rec.Status != idempotency.StatusFailed {
		t.Fatalf("expected FAILED receipt, got %+v", rec)
	}

	emitter.err = nil
	if err := p.Handle(context.Background(), placedEvent(t, "o2")); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(emitter.calls) != 1 {
		t.Fatalf("expected metrics on retry, got %d calls", len(emitter.calls))
	}
}
