package edsm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/m-mizutani/gt"

	"github.com/fuelrats/ratboard/pkg/service/edsm"
)

func newEDSMServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		gt.Value(t, r.URL.Path).Equal("/system")

		switch r.URL.Query().Get("systemName") {
		case "Fuelum":
			_, _ = w.Write([]byte(`{"name":"Fuelum","coords":{"x":52,"y":-52.65625,"z":49.8125}}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
}

func TestClientLookup(t *testing.T) {
	t.Run("known system resolves with coordinates", func(t *testing.T) {
		var hits int
		srv := newEDSMServer(t, &hits)
		defer srv.Close()

		client := edsm.New(nil, edsm.WithBaseURL(srv.URL))
		sys, err := client.Lookup(context.Background(), "Fuelum")
		gt.NoError(t, err).Required()
		gt.Value(t, sys.Name).Equal("Fuelum")
		gt.Value(t, sys.Coords).NotNil().Required()
		gt.Value(t, sys.Coords.X).Equal(52.0)
	})

	t.Run("unknown system reports not found", func(t *testing.T) {
		var hits int
		srv := newEDSMServer(t, &hits)
		defer srv.Close()

		client := edsm.New(nil, edsm.WithBaseURL(srv.URL))
		_, err := client.Lookup(context.Background(), "Nowhere")
		gt.Bool(t, errors.Is(err, edsm.ErrSystemNotFound)).True()
	})

	t.Run("server error reports bad response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := edsm.New(nil, edsm.WithBaseURL(srv.URL))
		_, err := client.Lookup(context.Background(), "Fuelum")
		gt.Bool(t, errors.Is(err, edsm.ErrBadResponse)).True()
	})
}

func TestClientCache(t *testing.T) {
	t.Run("fresh cache entry skips the network", func(t *testing.T) {
		var hits int
		srv := newEDSMServer(t, &hits)
		defer srv.Close()

		clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
		cache, err := edsm.NewCache(t.TempDir(), time.Hour, edsm.WithCacheClock(clock))
		gt.NoError(t, err).Required()

		client := edsm.New(cache, edsm.WithBaseURL(srv.URL))

		_, err = client.Lookup(context.Background(), "Fuelum")
		gt.NoError(t, err).Required()
		_, err = client.Lookup(context.Background(), "fuelum")
		gt.NoError(t, err).Required()
		gt.Number(t, hits).Equal(1)
	})

	t.Run("expired entry is re-fetched", func(t *testing.T) {
		var hits int
		srv := newEDSMServer(t, &hits)
		defer srv.Close()

		clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
		cache, err := edsm.NewCache(t.TempDir(), time.Hour, edsm.WithCacheClock(clock))
		gt.NoError(t, err).Required()

		client := edsm.New(cache, edsm.WithBaseURL(srv.URL))

		_, err = client.Lookup(context.Background(), "Fuelum")
		gt.NoError(t, err).Required()

		clock.Advance(2 * time.Hour)
		gt.Array(t, cache.Stale()).Length(1)

		_, err = client.Lookup(context.Background(), "Fuelum")
		gt.NoError(t, err).Required()
		gt.Number(t, hits).Equal(2)
	})

	t.Run("cache survives reopening", func(t *testing.T) {
		var hits int
		srv := newEDSMServer(t, &hits)
		defer srv.Close()

		dir := t.TempDir()
		cache, err := edsm.NewCache(dir, time.Hour)
		gt.NoError(t, err).Required()

		client := edsm.New(cache, edsm.WithBaseURL(srv.URL))
		_, err = client.Lookup(context.Background(), "Fuelum")
		gt.NoError(t, err).Required()

		reopened, err := edsm.NewCache(dir, time.Hour)
		gt.NoError(t, err).Required()
		sys, ok := reopened.Get("Fuelum")
		gt.Bool(t, ok).True()
		gt.Value(t, sys.Name).Equal("Fuelum")
	})
}

func TestClientBaseURLVariants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/api-v1/system")
		_, _ = w.Write([]byte(`{"name":"Fuelum"}`))
	}))
	defer srv.Close()

	for _, base := range []string{srv.URL + "/api-v1", srv.URL + "/api-v1/"} {
		client := edsm.New(nil, edsm.WithBaseURL(base))
		sys, err := client.Lookup(context.Background(), "Fuelum")
		gt.NoError(t, err).Required()
		gt.Value(t, sys.Name).Equal("Fuelum")
	}
}
