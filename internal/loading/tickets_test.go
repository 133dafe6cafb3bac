package loading

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/OCharnyshevich/beta14core/internal/chunkstore"
	"github.com/OCharnyshevich/beta14core/internal/world"
	"github.com/OCharnyshevich/beta14core/internal/worldgen"
)

func newTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := chunkstore.New(dir, worldgen.NewFlat(), log)
	ctx, cancel := context.WithCancel(context.Background())
	go store.Serve(ctx)
	return NewManager(store), cancel
}

func TestAddTicketLoadsChunkOnce(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()
	ctx := context.Background()
	pos := world.ChunkPos{X: 1, Z: 1}

	h1, err := m.AddTicket(ctx, Ticket(100), pos)
	if err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	h2, err := m.AddTicket(ctx, Ticket(200), pos)
	if err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	if h1 != h2 {
		t.Error("expected the same handle for two tickets on the same chunk")
	}
	if got := m.NumTickets(pos); got != 2 {
		t.Errorf("NumTickets = %d, want 2", got)
	}
	if !m.IsLoaded(pos) {
		t.Error("IsLoaded should be true with tickets held")
	}
}

func TestRemoveTicketKeepsChunkLoadedUntilLast(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()
	ctx := context.Background()
	pos := world.ChunkPos{X: 2, Z: 2}

	if _, err := m.AddTicket(ctx, Ticket(1), pos); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	if _, err := m.AddTicket(ctx, Ticket(2), pos); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	m.RemoveTicket(Ticket(1), pos)
	if !m.IsLoaded(pos) {
		t.Error("chunk should still be loaded with one ticket remaining")
	}

	m.RemoveTicket(Ticket(2), pos)
	if m.IsLoaded(pos) {
		t.Error("chunk should no longer be tracked once its last ticket is gone")
	}
}

func TestRemoveAllTicketsReturnsUnloadedChunks(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()
	ctx := context.Background()

	positions := []world.ChunkPos{{X: 0, Z: 0}, {X: 0, Z: 1}, {X: 1, Z: 0}}
	for _, pos := range positions {
		if _, err := m.AddTicket(ctx, Ticket(7), pos); err != nil {
			t.Fatalf("AddTicket(%v): %v", pos, err)
		}
	}
	// A second ticket on one chunk should survive ticket 7's removal.
	if _, err := m.AddTicket(ctx, Ticket(8), positions[0]); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	unloaded := m.RemoveAllTickets(Ticket(7))
	if len(unloaded) != 2 {
		t.Fatalf("unloaded = %v, want 2 entries", unloaded)
	}
	if m.NumTickets(positions[0]) != 1 {
		t.Errorf("positions[0] should still have ticket 8's claim")
	}
	if m.IsLoaded(positions[1]) || m.IsLoaded(positions[2]) {
		t.Error("chunks with no remaining tickets should no longer be tracked")
	}
}
