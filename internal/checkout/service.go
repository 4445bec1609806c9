// Package checkout runs the simulated order submission: it guards against duplicate submits,
// waits out the processing delay, clears the cart and announces the order on the checkout queue.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/imrishuroy/avenge-storefront/internal/aws"
	"github.com/imrishuroy/avenge-storefront/internal/cart"
	"github.com/imrishuroy/avenge-storefront/internal/idempotency"
	"github.com/imrishuroy/avenge-storefront/internal/logging"
	"github.com/imrishuroy/avenge-storefront/internal/metrics"
	"github.com/rs/zerolog"
)

// DefaultDelay mirrors the storefront's simulated payment processing time.
const DefaultDelay = 2 * time.Second

// Result labels for the submissions counter.
const (
	resultPlaced     = "placed"
	resultReplayed   = "replayed"
	resultEmpty      = "empty_cart"
	resultInProgress = "in_progress"
	resultFailed     = "failed"
)

// IdempotencyStore is satisfied by *idempotency.Store and *idempotency.Memory.
type IdempotencyStore interface {
	CreateIfNotExists(ctx context.Context, key, reference string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// EventPublisher is satisfied by *aws.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, messageBody string, attributes map[string]string) error
}

type Service struct {
	idem     IdempotencyStore
	events   EventPublisher
	delay    time.Duration
	nowFunc  func() time.Time
	log      zerolog.Logger
	metrics  *metrics.CheckoutMetrics
	inflight sync.Map // session id -> struct{}
}

type Option func(*Service)

func WithDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds a checkout Service. idem and events may be nil: without idempotency keys
// the in-process session guard still applies, and without a publisher no event is sent.
func NewService(idem IdempotencyStore, events EventPublisher, opts ...Option) *Service {
	s := &Service{
		idem:    idem,
		events:  events,
		delay:   DefaultDelay,
		nowFunc: time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit places the order held in store. On success the ordered lines are taken out of the cart
// and the confirmation is returned; on failure the cart is untouched.
func (s *Service) Submit(ctx context.Context, store *cart.Store, in SubmitInput) (Result, error) {
	start := s.nowFunc()
	res, err := s.submit(ctx, store, in)
	s.metrics.IncResult(resultLabel(res, err))
	s.metrics.ObserveSeconds(s.nowFunc().Sub(start).Seconds())
	return res, err
}

func (s *Service) submit(ctx context.Context, store *cart.Store, in SubmitInput) (Result, error) {
	log := logging.FromContext(ctx, s.log)

	// one submission per session at a time, like a disabled submit button
	if _, busy := s.inflight.LoadOrStore(in.SessionID, struct{}{}); busy {
		return Result{}, ErrSubmissionInProgress
	}
	defer s.inflight.Delete(in.SessionID)

	key := ""
	if in.IdempotencyKey != "" && s.idem != nil {
		key = recordKey(in.SessionID, in.IdempotencyKey)
		if res, done, err := s.resolve(ctx, key); done || err != nil {
			return res, err
		}
	}

	snapshot := store.Snapshot()
	if snapshot.IsEmpty() {
		return Result{}, ErrEmptyCart
	}

	if key != "" {
		created, err := s.idem.CreateIfNotExists(ctx, key, in.SessionID)
		if err != nil {
			return Result{}, &SubmissionError{Stage: StageClaim, Err: err}
		}
		if !created {
			// lost a race with another instance holding the same key
			if res, done, err := s.resolve(ctx, key); done || err != nil {
				return res, err
			}
			return Result{}, ErrSubmissionInProgress
		}
	}

	conf := newConfirmation(uuid.NewString(), s.nowFunc().UTC(), snapshot, in.Request)

	if err := s.wait(ctx); err != nil {
		s.markFailed(ctx, log, key, err)
		return Result{}, &SubmissionError{Stage: StageProcessing, Err: err}
	}

	// only what was ordered leaves the cart; lines added during processing stay
	store.Settle(ctx, snapshot)

	if key != "" {
		body, err := json.Marshal(conf)
		if err == nil {
			err = s.idem.MarkDone(context.WithoutCancel(ctx), key, string(body), http.StatusCreated)
		}
		if err != nil {
			log.Error().Err(err).Str("order_number", conf.OrderNumber).Msg("failed to record checkout result")
		}
	}

	s.publish(ctx, log, conf, in)

	log.Info().
		Str("order_number", conf.OrderNumber).
		Int("items", conf.Cart.TotalItems()).
		Str("total", conf.Summary.Total.StringFixed(2)).
		Msg("order placed")
	return Result{Confirmation: conf}, nil
}

// resolve inspects an existing record for key. done is true when the caller should return res/err
// as is; a missing or failed record lets the submission proceed.
func (s *Service) resolve(ctx context.Context, key string) (res Result, done bool, err error) {
	rec, err := s.idem.Get(ctx, key)
	if err != nil {
		return Result{}, true, &SubmissionError{Stage: StageClaim, Err: err}
	}
	if rec == nil {
		return Result{}, false, nil
	}
	switch rec.Status {
	case idempotency.StatusDone:
		var conf Confirmation
		if err := json.Unmarshal([]byte(rec.ResponseBody), &conf); err != nil {
			return Result{}, true, &SubmissionError{Stage: StageClaim, Err: fmt.Errorf("decode stored confirmation: %w", err)}
		}
		return Result{Confirmation: conf, Replayed: true}, true, nil
	case idempotency.StatusInProgress:
		return Result{}, true, ErrSubmissionInProgress
	default:
		return Result{}, false, nil
	}
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) markFailed(ctx context.Context, log zerolog.Logger, key string, cause error) {
	if key == "" {
		return
	}
	if err := s.idem.MarkFailed(context.WithoutCancel(ctx), key, cause.Error()); err != nil {
		log.Error().Err(err).Msg("failed to mark checkout attempt failed")
	}
}

func (s *Service) publish(ctx context.Context, log zerolog.Logger, conf Confirmation, in SubmitInput) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(conf.event(in.SessionID, in.CorrelationID))
	if err != nil {
		log.Error().Err(err).Msg("failed to encode placed event")
		return
	}
	attrs := map[string]string{
		"order_number":   conf.OrderNumber,
		"correlation_id": in.CorrelationID,
	}
	err = s.events.Publish(context.WithoutCancel(ctx), string(body), attrs)
	switch {
	case errors.Is(err, aws.ErrNoQueue):
		log.Debug().Str("order_number", conf.OrderNumber).Msg("no checkout queue configured, event skipped")
	case err != nil:
		log.Warn().Err(err).Str("order_number", conf.OrderNumber).Msg("failed to publish placed event")
	}
}

// recordKey scopes a client idempotency key to its session.
func recordKey(sessionID, key string) string {
	return "checkout:" + sessionID + ":" + key
}

func resultLabel(res Result, err error) string {
	switch {
	case err == nil && res.Replayed:
		return resultReplayed
	case err == nil:
		return resultPlaced
	case errors.Is(err, ErrEmptyCart):
		return resultEmpty
	case errors.Is(err, ErrSubmissionInProgress):
		return resultInProgress
	default:
		return resultFailed
	}
}
