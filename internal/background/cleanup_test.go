package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *recordingPruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, p.err
}

func (p *recordingPruner) calls() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.cutoffs...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupManager_RunCleanupUsesRetentionCutoff(t *testing.T) {
	pruner := &recordingPruner{}
	cm := NewCleanupManager(pruner, discardLogger(), time.Hour, 30*24*time.Hour)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cm.now = func() time.Time { return now }

	cm.runCleanup(context.Background())

	calls := pruner.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, now.Add(-30*24*time.Hour), calls[0])
}

func TestCleanupManager_StoreErrorIsLogged(t *testing.T) {
	pruner := &recordingPruner{err: errors.New("connection reset")}
	cm := NewCleanupManager(pruner, discardLogger(), time.Hour, time.Hour)

	assert.NotPanics(t, func() { cm.runCleanup(context.Background()) })
	assert.Len(t, pruner.calls(), 1)
}

func TestCleanupManager_StartRunsImmediatelyAndStops(t *testing.T) {
	pruner := &recordingPruner{}
	cm := NewCleanupManager(pruner, discardLogger(), time.Hour, time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return len(pruner.calls()) == 1 }, time.Second, 5*time.Millisecond)

	cm.Stop()
	cm.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_StopsOnContextCancel(t *testing.T) {
	cm := NewCleanupManager(&recordingPruner{}, discardLogger(), time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager ignored context cancellation")
	}
}
