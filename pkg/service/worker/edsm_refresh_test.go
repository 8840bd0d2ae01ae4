package worker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fuelrats/ratboard/pkg/service/edsm"
	"github.com/fuelrats/ratboard/pkg/service/worker"
	"github.com/jonboulle/clockwork"
)

type countingEDSM struct {
	mu    sync.Mutex
	calls int
}

func (s *countingEDSM) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls++
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(edsm.System{
			Name:   r.URL.Query().Get("systemName"),
			Coords: &edsm.Coords{X: 1, Y: 2, Z: 3},
		})
	}
}

func (s *countingEDSM) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestEDSMRefreshWorker_RefreshesStaleEntries(t *testing.T) {
	ctx := context.Background()
	upstream := &countingEDSM{}
	server := httptest.NewServer(upstream.handler())
	defer server.Close()

	clock := clockwork.NewFakeClock()
	cache, err := edsm.NewCache(t.TempDir(), time.Hour, edsm.WithCacheClock(clock))
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	client := edsm.New(cache, edsm.WithBaseURL(server.URL))

	// Seed the cache, then age the entry past maxAge
	if _, err := client.Lookup(ctx, "Fuelum"); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}
	if upstream.count() != 1 {
		t.Fatalf("expected 1 upstream call after seed, got %d", upstream.count())
	}
	clock.Advance(2 * time.Hour)

	w := worker.NewEDSMRefreshWorker(client, cache, 50*time.Millisecond)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	// Wait for at least one tick
	time.Sleep(150 * time.Millisecond)

	if upstream.count() < 2 {
		t.Errorf("expected stale entry to be re-fetched, upstream calls=%d", upstream.count())
	}

	// The refreshed entry should now be fresh, so a lookup stays local
	before := upstream.count()
	if _, err := client.Lookup(ctx, "Fuelum"); err != nil {
		t.Fatalf("lookup after refresh failed: %v", err)
	}
	if upstream.count() != before {
		t.Errorf("expected cache hit after refresh, upstream calls went %d -> %d", before, upstream.count())
	}
}

func TestEDSMRefreshWorker_NoStaleEntriesIsQuiet(t *testing.T) {
	ctx := context.Background()
	upstream := &countingEDSM{}
	server := httptest.NewServer(upstream.handler())
	defer server.Close()

	cache, err := edsm.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	client := edsm.New(cache, edsm.WithBaseURL(server.URL))

	w := worker.NewEDSMRefreshWorker(client, cache, 20*time.Millisecond)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	w.Stop()

	if upstream.count() != 0 {
		t.Errorf("expected no upstream calls with an empty cache, got %d", upstream.count())
	}
}

func TestEDSMRefreshWorker_StopsCleanly(t *testing.T) {
	ctx := context.Background()
	cache, err := edsm.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	client := edsm.New(cache)

	w := worker.NewEDSMRefreshWorker(client, cache, 50*time.Millisecond)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	stopStart := time.Now()
	w.Stop()
	if d := time.Since(stopStart); d > time.Second {
		t.Errorf("Stop() took too long: %v", d)
	}
}
