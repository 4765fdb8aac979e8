package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qforge/qtopo/pkg/autosave"
	"github.com/qforge/qtopo/pkg/snapshot"
	"github.com/qforge/qtopo/pkg/topology"
)

type fetcherFunc func(ctx context.Context, pk string) (*snapshot.Snapshot, error)

func (f fetcherFunc) FetchTopology(ctx context.Context, pk string) (*snapshot.Snapshot, error) {
	return f(ctx, pk)
}

func TestPrimeFromServerSkipsRedundantSave(t *testing.T) {
	logger := log.New(io.Discard)

	snap, err := snapshot.Decode([]byte(sampleSnapshotJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g := topology.New()
	if err := snapshot.Import(g, snap, logger); err != nil {
		t.Fatalf("Import: %v", err)
	}

	saves := 0
	save := autosave.SaverFunc(func(ctx context.Context, s *snapshot.Snapshot) error {
		saves++
		return nil
	})
	loop := autosave.New(g, save, time.Minute, logger)

	primeFromServer(context.Background(), loop, fetcherFunc(func(ctx context.Context, pk string) (*snapshot.Snapshot, error) {
		return snap, nil
	}), "pk-1", logger)

	if err := loop.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if saves != 0 {
		t.Errorf("saves = %d, want 0 after priming with identical content", saves)
	}
}

func TestPrimeFromServerWithoutPKSavesOnce(t *testing.T) {
	logger := log.New(io.Discard)

	snap, err := snapshot.Decode([]byte(sampleSnapshotJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g := topology.New()
	if err := snapshot.Import(g, snap, logger); err != nil {
		t.Fatalf("Import: %v", err)
	}

	saves := 0
	save := autosave.SaverFunc(func(ctx context.Context, s *snapshot.Snapshot) error {
		saves++
		return nil
	})
	loop := autosave.New(g, save, time.Minute, logger)

	primeFromServer(context.Background(), loop, fetcherFunc(func(ctx context.Context, pk string) (*snapshot.Snapshot, error) {
		t.Error("fetch should not be called without a pk")
		return nil, nil
	}), "", logger)

	if err := loop.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if saves != 1 {
		t.Errorf("saves = %d, want 1 with no baseline", saves)
	}
}

func TestPollFileImportsChanges(t *testing.T) {
	logger := log.New(io.Discard)

	path := filepath.Join(t.TempDir(), "topo.json")
	if err := os.WriteFile(path, []byte(sampleSnapshotJSON), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	g := topology.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go pollFile(ctx, path, 5*time.Millisecond, g, logger)

	deadline := time.Now().Add(2 * time.Second)
	for g.NodeCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("graph never picked up the file contents")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
