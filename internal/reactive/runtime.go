// Package reactive is the boundary between the dashboard core and whatever
// drives the page. A callback binds one input control to an ordered list of
// output slots; an input-changed event runs the callback and pushes the
// results to a Sink under the slot ids.
package reactive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrUnknownInput   = errors.New("no callback registered for input")
	ErrDuplicateInput = errors.New("input already has a callback")
	ErrInvalidValue   = errors.New("invalid input value")
	ErrOutputMismatch = errors.New("callback returned wrong number of outputs")
)

type State int32

const (
	Idle State = iota
	Computing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Computing:
		return "computing"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Slot addresses one property of one output component, e.g. pie-chart.figure.
type Slot struct {
	ID       string `json:"id"`
	Property string `json:"property"`
}

func (s Slot) String() string {
	return s.ID + "." + s.Property
}

type InputEvent struct {
	ID    string `json:"input"`
	Value string `json:"value"`
}

type Update struct {
	Slot  Slot `json:"slot"`
	Value any  `json:"value"`
}

// Handler computes one value per output slot, in slot order.
type Handler func(ctx context.Context, value string) ([]any, error)

type Callback struct {
	Input   string
	Outputs []Slot
	Handler Handler
	// Validate rejects values before the handler runs. Optional.
	Validate func(value string) error
}

// Sink receives the updates of one dispatch.
type Sink interface {
	Push(ctx context.Context, updates []Update) error
}

type SinkFunc func(ctx context.Context, updates []Update) error

func (f SinkFunc) Push(ctx context.Context, updates []Update) error {
	return f(ctx, updates)
}

// Runtime holds the registered callbacks and runs them one at a time.
type Runtime struct {
	mu        sync.Mutex
	callbacks map[string]Callback
	state     atomic.Int32
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		callbacks: make(map[string]Callback),
		logger:    logger,
	}
}

func (r *Runtime) Register(cb Callback) error {
	if cb.Input == "" || cb.Handler == nil || len(cb.Outputs) == 0 {
		return fmt.Errorf("register %q: input, handler and outputs are required", cb.Input)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.callbacks[cb.Input]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateInput, cb.Input)
	}
	r.callbacks[cb.Input] = cb
	r.logger.Debug("callback registered", zap.String("input", cb.Input), zap.Int("outputs", len(cb.Outputs)))
	return nil
}

func (r *Runtime) State() State {
	return State(r.state.Load())
}

// Dispatch runs the callback bound to ev.ID and pushes its outputs to sink.
// Concurrent dispatches are serialised.
func (r *Runtime) Dispatch(ctx context.Context, ev InputEvent, sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.callbacks[ev.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInput, ev.ID)
	}
	if cb.Validate != nil {
		if err := cb.Validate(ev.Value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	r.state.Store(int32(Computing))
	defer r.state.Store(int32(Idle))

	values, err := cb.Handler(ctx, ev.Value)
	if err != nil {
		return fmt.Errorf("callback %s: %w", ev.ID, err)
	}
	if len(values) != len(cb.Outputs) {
		return fmt.Errorf("%w: %s returned %d, want %d", ErrOutputMismatch, ev.ID, len(values), len(cb.Outputs))
	}

	updates := make([]Update, len(values))
	for i, v := range values {
		updates[i] = Update{Slot: cb.Outputs[i], Value: v}
	}

	r.logger.Debug("dispatch",
		zap.String("input", ev.ID),
		zap.String("value", ev.Value),
		zap.Duration("took", time.Since(start)))

	return sink.Push(ctx, updates)
}
