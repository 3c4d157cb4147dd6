package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Pinger is the store connection check used by the readiness gate.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessGate rejects every request with 503 while the backing store
// connection is down. The state is refreshed by a background ping loop, so
// the gate itself never blocks a request on store I/O.
type ReadinessGate struct {
	store Pinger
	ready atomic.Bool
}

// NewReadinessGate creates a readiness gate assuming the store is up.
func NewReadinessGate(store Pinger) *ReadinessGate {
	g := &ReadinessGate{store: store}
	g.ready.Store(true)
	return g
}

// StartMonitor pings the store on the given interval until ctx is
// cancelled, flipping the gate on state changes.
func (g *ReadinessGate) StartMonitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.check(ctx)
			}
		}
	}()
}

func (g *ReadinessGate) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := g.store.Ping(pingCtx)
	was := g.ready.Swap(err == nil)

	if err != nil && was {
		log.Warn().Err(err).Msg("store connection lost, rejecting requests")
	}
	if err == nil && !was {
		log.Info().Msg("store connection restored")
	}
}

// SetReady overrides the gate state. Used by tests and during shutdown.
func (g *ReadinessGate) SetReady(ready bool) {
	g.ready.Store(ready)
}

// Middleware returns the readiness gate handler wrapper. The health
// endpoint is exempt so liveness probes keep working while the store is
// down.
func (g *ReadinessGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if !g.ready.Load() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "service unavailable",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
