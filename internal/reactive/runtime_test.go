package reactive

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSlots = []Slot{{ID: "a", Property: "children"}, {ID: "b", Property: "figure"}}

type recordingSink struct {
	mu      sync.Mutex
	batches [][]Update
}

func (s *recordingSink) Push(_ context.Context, updates []Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, updates)
	return nil
}

func echoCallback(rt *Runtime) Callback {
	return Callback{
		Input:   "dropdown",
		Outputs: testSlots,
		Handler: func(_ context.Context, v string) ([]any, error) {
			// observed from inside the handler
			return []any{v, rt.State()}, nil
		},
	}
}

func TestDispatch(t *testing.T) {
	rt := New(nil)
	require.NoError(t, rt.Register(echoCallback(rt)))

	sink := &recordingSink{}
	require.NoError(t, rt.Dispatch(context.Background(), InputEvent{ID: "dropdown", Value: "Albania"}, sink))

	require.Len(t, sink.batches, 1)
	got := sink.batches[0]
	require.Len(t, got, 2)
	assert.Equal(t, Update{Slot: testSlots[0], Value: "Albania"}, got[0])
	assert.Equal(t, Update{Slot: testSlots[1], Value: Computing}, got[1])
	assert.Equal(t, Idle, rt.State())
}

func TestRegisterErrors(t *testing.T) {
	rt := New(nil)
	require.NoError(t, rt.Register(echoCallback(rt)))

	err := rt.Register(echoCallback(rt))
	assert.ErrorIs(t, err, ErrDuplicateInput)

	assert.Error(t, rt.Register(Callback{Input: "x"}))
}

func TestDispatchErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		cb   Callback
		ev   InputEvent
		want error
	}{
		{
			name: "unknown input",
			cb:   Callback{Input: "dropdown", Outputs: testSlots, Handler: func(context.Context, string) ([]any, error) { return nil, nil }},
			ev:   InputEvent{ID: "other"},
			want: ErrUnknownInput,
		},
		{
			name: "rejected value",
			cb: Callback{
				Input:    "dropdown",
				Outputs:  testSlots,
				Handler:  func(context.Context, string) ([]any, error) { return []any{1, 2}, nil },
				Validate: func(string) error { return boom },
			},
			ev:   InputEvent{ID: "dropdown", Value: "Atlantis"},
			want: ErrInvalidValue,
		},
		{
			name: "handler error",
			cb:   Callback{Input: "dropdown", Outputs: testSlots, Handler: func(context.Context, string) ([]any, error) { return nil, boom }},
			ev:   InputEvent{ID: "dropdown"},
			want: boom,
		},
		{
			name: "wrong output count",
			cb:   Callback{Input: "dropdown", Outputs: testSlots, Handler: func(context.Context, string) ([]any, error) { return []any{1}, nil }},
			ev:   InputEvent{ID: "dropdown"},
			want: ErrOutputMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := New(nil)
			require.NoError(t, rt.Register(tt.cb))
			sink := &recordingSink{}

			err := rt.Dispatch(context.Background(), tt.ev, sink)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, sink.batches)
			assert.Equal(t, Idle, rt.State())
		})
	}
}

func TestDispatchCancelled(t *testing.T) {
	rt := New(nil)
	called := false
	require.NoError(t, rt.Register(Callback{
		Input:   "dropdown",
		Outputs: testSlots,
		Handler: func(context.Context, string) ([]any, error) { called = true; return []any{1, 2}, nil },
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rt.Dispatch(ctx, InputEvent{ID: "dropdown"}, SinkFunc(func(context.Context, []Update) error { return nil }))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestDispatchSerialised(t *testing.T) {
	rt := New(nil)
	var active, maxActive int
	var mu sync.Mutex
	require.NoError(t, rt.Register(Callback{
		Input:   "dropdown",
		Outputs: testSlots[:1],
		Handler: func(_ context.Context, v string) ([]any, error) {
			mu.Lock()
			active++
			maxActive = max(maxActive, active)
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
			return []any{v}, nil
		},
	}))

	sink := &recordingSink{}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rt.Dispatch(context.Background(), InputEvent{ID: "dropdown", Value: "x"}, sink))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Len(t, sink.batches, 16)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "computing", Computing.String())
	assert.Equal(t, "a.children", testSlots[0].String())
}
