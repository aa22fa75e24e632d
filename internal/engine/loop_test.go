package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// fakeStore records applied writes and lets tests feed deliveries.
type fakeStore struct {
	mu       sync.Mutex
	applied  [][]store.Write
	applyErr error
	out      chan store.Delivery
}

func newFakeStore() *fakeStore {
	return &fakeStore{out: make(chan store.Delivery, 16)}
}

func (f *fakeStore) Apply(ctx context.Context, writes []store.Write) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, writes)
	return f.applyErr
}

func (f *fakeStore) Deliveries() <-chan store.Delivery {
	return f.out
}

func (f *fakeStore) Close() error {
	close(f.out)
	return nil
}

func (f *fakeStore) appliedBatches() [][]store.Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]store.Write(nil), f.applied...)
}

func runLoop(t *testing.T, loop *Loop) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("loop did not stop")
		}
	}
}

func TestLoop_IntentProducesWrite(t *testing.T) {
	st := newFakeStore()
	loop := NewLoop(newTestApp(model.Anonymous{ID: "u1"}), st)
	stop := runLoop(t, loop)
	defer stop()

	require.True(t, loop.Enqueue(CastVote{TopicID: "T"}))

	require.Eventually(t, func() bool {
		return len(st.appliedBatches()) == 1
	}, time.Second, 5*time.Millisecond)

	batch := st.appliedBatches()[0]
	require.Len(t, batch, 1)
	set := batch[0].(store.Set)
	assert.Equal(t, "votes/u1:T", set.Path.String())
}

func TestLoop_DeliveryReachesApp(t *testing.T) {
	st := newFakeStore()
	loop := NewLoop(newTestApp(model.Anonymous{ID: "u1"}), st)

	st.out <- store.TopicDiff{Added: []model.Topic{topic("T", "hello")}}
	st.out <- store.VoteSnapshot{}
	// Closing after the sends makes Run drain both deliveries, then exit.
	require.NoError(t, st.Close())

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on store close")
	}

	view := loop.App().View()
	require.Len(t, view.ToVote, 1)
	assert.Equal(t, "hello", view.ToVote[0].Text)
}

func TestLoop_StopsWhenStoreCloses(t *testing.T) {
	st := newFakeStore()
	loop := NewLoop(newTestApp(model.Anonymous{ID: "u1"}), st)

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	require.NoError(t, st.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on store close")
	}
}

func TestLoop_WriteFailureSurfacesOnBanner(t *testing.T) {
	st := newFakeStore()
	st.applyErr = errors.New("disk full")
	loop := NewLoop(newTestApp(model.Anonymous{ID: "u1"}), st)
	stop := runLoop(t, loop)

	loop.Enqueue(CastVote{TopicID: "T"})

	require.Eventually(t, func() bool {
		return len(st.appliedBatches()) == 1
	}, time.Second, 5*time.Millisecond)

	stop()
	banner := loop.App().LastError()
	require.NotNil(t, banner)
	assert.Equal(t, StoreFailure, banner.Kind)
	assert.Contains(t, banner.Detail, "disk full")
}
