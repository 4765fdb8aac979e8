// Package autosave persists topology changes in the background.
//
// A Loop watches a graph and pushes its exported snapshot to a Saver
// (normally the server client) whenever the serialized form differs
// from the last successfully persisted one. Cycles run sequentially in
// a single goroutine, so a slow save never overlaps the next one.
package autosave

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qforge/qtopo/pkg/cache"
	"github.com/qforge/qtopo/pkg/observability"
	"github.com/qforge/qtopo/pkg/snapshot"
	"github.com/qforge/qtopo/pkg/topology"
)

// DefaultInterval is the periodic save check cadence.
const DefaultInterval = 2 * time.Second

// Saver persists an exported snapshot.
type Saver interface {
	SaveTopology(ctx context.Context, snap *snapshot.Snapshot) error
}

// Fetcher retrieves a persisted snapshot by primary key. It is the read
// half of the sync contract, used to seed a Loop's baseline.
type Fetcher interface {
	FetchTopology(ctx context.Context, pk string) (*snapshot.Snapshot, error)
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, snap *snapshot.Snapshot) error

func (f SaverFunc) SaveTopology(ctx context.Context, snap *snapshot.Snapshot) error {
	return f(ctx, snap)
}

// Loop periodically exports the graph and saves it when it changed.
type Loop struct {
	graph    *topology.Graph
	saver    Saver
	interval time.Duration
	logger   *log.Logger

	// digest of the last successfully persisted export. Only updated
	// after the saver reports success, so a failed save is retried on
	// the next cycle.
	baseline string
}

// New creates a Loop. interval <= 0 uses DefaultInterval; a nil logger
// uses the default logger.
func New(g *topology.Graph, saver Saver, interval time.Duration, logger *log.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{graph: g, saver: saver, interval: interval, logger: logger}
}

// Prime sets the baseline from already-persisted data, typically the
// payload just pulled from the server. This prevents an immediate
// save of content the server already has.
func (l *Loop) Prime(data []byte) {
	l.baseline = cache.Hash(data)
}

// Run drives save cycles until ctx is cancelled. A cycle runs on every
// graph change notification and on a periodic ticker as a safety net.
// Run always returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.graph.Changes():
		case <-ticker.C:
		}
		if err := l.Flush(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("autosave failed, will retry", "error", err)
		}
	}
}

// Flush runs one save cycle immediately: export, compare against the
// baseline, persist when different. A no-change cycle does nothing and
// returns nil.
func (l *Loop) Flush(ctx context.Context) error {
	snap := snapshot.Export(l.graph, l.logger)
	data, err := snapshot.Marshal(snap)
	if err != nil {
		return err
	}

	digest := cache.Hash(data)
	if digest == l.baseline {
		observability.Sync().OnSaveSkipped(ctx, snap.Name)
		return nil
	}

	observability.Sync().OnSaveStart(ctx, snap.Name)
	start := time.Now()
	err = l.saver.SaveTopology(ctx, snap)
	observability.Sync().OnSaveComplete(ctx, snap.Name, time.Since(start), err)
	if err != nil {
		return err
	}
	l.baseline = digest
	l.logger.Debug("topology autosaved", "bytes", len(data))
	return nil
}
