package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	qerrors "github.com/qforge/qtopo/pkg/errors"
	"github.com/qforge/qtopo/pkg/live"
	"github.com/qforge/qtopo/pkg/snapshot"
)

// simRunner drives a toy simulation over a stored topology. Each step
// walks the topology's connections and broadcasts a simulation event
// per hop, which is enough to exercise clients end to end. Real physics
// lives elsewhere; this server only orchestrates.
type simRunner struct {
	logger *log.Logger
	hub    *Hub
	step   time.Duration

	mu      sync.Mutex
	id      string
	cancel  context.CancelFunc
	running bool
}

func newSimRunner(hub *Hub, step time.Duration, logger *log.Logger) *simRunner {
	if step <= 0 {
		step = time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &simRunner{logger: logger, hub: hub, step: step}
}

// Start begins a simulation over snap and returns its id. A running
// simulation is stopped first; the server hosts one simulation at a
// time.
func (r *simRunner) Start(snap *snapshot.Snapshot) (string, error) {
	if snap == nil || snap.Empty() {
		return "", qerrors.New(qerrors.ErrCodeEmptyTopology, "cannot simulate an empty topology")
	}

	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	r.id = uuid.NewString()
	r.cancel = cancel
	r.running = true

	go r.run(ctx, r.id, snap)
	r.logger.Info("simulation started", "id", r.id, "topology", snap.PK)
	return r.id, nil
}

// Stop halts the running simulation. Stopping an idle runner is a
// no-op.
func (r *simRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.running {
		r.logger.Info("simulation stopped", "id", r.id)
	}
	r.running = false
}

// Running reports whether a simulation is active.
func (r *simRunner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Message injects a point-to-point message into the running simulation
// by broadcasting a server response event.
func (r *simRunner) Message(from, to, text string) error {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return qerrors.New(qerrors.ErrCodeNotConnected, "no simulation running")
	}

	r.hub.Broadcast("server_response", map[string]string{
		"from_node_name": from,
		"to_node_name":   to,
		"message":        text,
	})
	return nil
}

func (r *simRunner) run(ctx context.Context, id string, snap *snapshot.Snapshot) {
	ticker := time.NewTicker(r.step)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			r.hub.Broadcast("simulation_summary", map[string]any{
				"simulation_id": id,
				"steps":         step,
			})
			return
		case <-ticker.C:
		}

		step++
		for _, zone := range snap.Zones {
			for _, net := range zone.Networks {
				for _, conn := range net.Connections {
					r.hub.Broadcast(live.EventSimulation, map[string]any{
						"simulation_id": id,
						"step":          step,
						"from":          conn.From,
						"to":            conn.To,
					})
				}
			}
		}
	}
}
