package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/imrishuroy/avenge-storefront/internal/catalog"
	"github.com/imrishuroy/avenge-storefront/internal/logging"
	"github.com/imrishuroy/avenge-storefront/internal/metrics"
	"github.com/imrishuroy/avenge-storefront/internal/slot"
	"github.com/rs/zerolog"
)

// Store is the sole owner of one session's cart State. Every mutation runs Reduce and then
// writes the new state to the slot; write failures leave the in-memory state authoritative
// until the next successful write.
type Store struct {
	mu      sync.Mutex
	state   State
	dirty   bool // last write failed, memory is ahead of the slot
	slot    slot.Slot
	key     string
	log     zerolog.Logger
	metrics *metrics.CartMetrics
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Load builds a Store for key, restoring the persisted cart. A missing, unreadable or corrupt
// payload yields an empty cart.
func Load(ctx context.Context, sl slot.Slot, key string, opts ...Option) *Store {
	s := &Store{
		slot: sl,
		key:  key,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state, _ = s.read(ctx)
	return s
}

// Refresh replaces the in-memory state with the slot's copy, which may have been written by
// another instance. It keeps the memory state when the slot read fails or when the last write
// never reached the slot.
func (s *Store) Refresh(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshLocked(ctx)
	return s.state.clone()
}

func (s *Store) refreshLocked(ctx context.Context) {
	if s.dirty {
		return
	}
	if state, ok := s.read(ctx); ok {
		s.state = state
	}
}

// Key is the slot key this Store persists to.
func (s *Store) Key() string { return s.key }

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) AddItem(ctx context.Context, p catalog.Product) State {
	return s.Dispatch(ctx, AddItem{Product: p})
}

func (s *Store) RemoveItem(ctx context.Context, productID int) State {
	return s.Dispatch(ctx, RemoveItem{ProductID: productID})
}

func (s *Store) SetQuantity(ctx context.Context, productID, quantity int) State {
	return s.Dispatch(ctx, SetQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) State {
	return s.Dispatch(ctx, Clear{})
}

// Dispatch applies cmd, persists the result and returns the new snapshot.
func (s *Store) Dispatch(ctx context.Context, cmd Command) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, cmd)
	s.metrics.IncMutation(cmd.op())
	s.write(ctx, s.state)
	return s.state.clone()
}

// Settle takes the quantities in ordered out of the cart and persists the result. Lines that drop
// to zero are removed; anything added after ordered was captured stays in the cart.
func (s *Store) Settle(ctx context.Context, ordered State) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshLocked(ctx)
	next := s.state
	for _, o := range ordered.Lines {
		if cur, ok := next.Line(o.ProductID); ok {
			next = Reduce(next, SetQuantity{ProductID: o.ProductID, Quantity: cur.Quantity - o.Quantity})
		}
	}
	s.state = next.clone()
	s.metrics.IncMutation("settle")
	s.write(ctx, s.state)
	return s.state.clone()
}

// read loads the slot's copy. ok is false only when the slot itself failed; a missing or corrupt
// payload reads as an empty cart.
func (s *Store) read(ctx context.Context) (state State, ok bool) {
	log := logging.FromContext(ctx, s.log)

	payload, found, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.recordFailure(log, zerolog.WarnLevel, &PersistenceError{Op: OpRead, Key: s.key, Err: err})
		return Empty(), false
	}
	if !found {
		log.Debug().Str("slot_key", s.key).Msg("no saved cart, starting empty")
		return Empty(), true
	}

	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		s.recordFailure(log, zerolog.WarnLevel, &PersistenceError{Op: OpRead, Key: s.key, Err: err})
		return Empty(), true
	}
	return state, true
}

func (s *Store) write(ctx context.Context, state State) {
	log := logging.FromContext(ctx, s.log)

	payload, err := json.Marshal(state)
	if err != nil {
		s.dirty = true
		s.recordFailure(log, zerolog.ErrorLevel, &PersistenceError{Op: OpWrite, Key: s.key, Err: err})
		return
	}
	// a client hanging up mid-request must not cancel the write
	if err := s.slot.Set(context.WithoutCancel(ctx), s.key, string(payload)); err != nil {
		s.dirty = true
		s.recordFailure(log, zerolog.ErrorLevel, &PersistenceError{Op: OpWrite, Key: s.key, Err: err})
		return
	}
	s.dirty = false
}

func (s *Store) recordFailure(log zerolog.Logger, level zerolog.Level, perr *PersistenceError) {
	s.metrics.IncPersistenceFailure(perr.Op)
	log.WithLevel(level).
		Err(perr).
		Str("op", perr.Op).
		Str("slot_key", perr.Key).
		Msg("cart persistence failed, continuing with in-memory cart")
}
