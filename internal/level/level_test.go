package level

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/OCharnyshevich/beta14core/internal/chunkstore"
	"github.com/OCharnyshevich/beta14core/internal/worldgen"
)

func newTestLevel(t *testing.T) (*Level, context.CancelFunc) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := chunkstore.New(dir, worldgen.NewFlat(), log)
	ctx, cancel := context.WithCancel(context.Background())
	go store.Serve(ctx)
	return New("world", store, 42), cancel
}

func TestSetBlockThenGetBlock(t *testing.T) {
	lvl, cancel := newTestLevel(t)
	defer cancel()
	ctx := context.Background()

	pos := BlockPos{X: 20, Y: 64, Z: -5}
	if err := lvl.SetBlock(ctx, pos, 1, 0); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}

	id, meta, err := lvl.GetBlock(ctx, pos)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if id != 1 || meta != 0 {
		t.Errorf("GetBlock = (%d,%d), want (1,0)", id, meta)
	}
}

func TestSetBlockEmitsChangeEvent(t *testing.T) {
	lvl, cancel := newTestLevel(t)
	defer cancel()
	ctx := context.Background()

	pos := BlockPos{X: 1, Y: 70, Z: 1}
	if err := lvl.SetBlock(ctx, pos, 5, 2); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}

	select {
	case ev := <-lvl.Changes():
		if ev.Pos != pos || ev.NewID != 5 || ev.NewMeta != 2 {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("expected a BlockChangeEvent")
	}
}

func TestSetBlockNoChangeEmitsNoEvent(t *testing.T) {
	lvl, cancel := newTestLevel(t)
	defer cancel()
	ctx := context.Background()

	pos := BlockPos{X: 0, Y: 0, Z: 0}
	// Flat-generated bedrock at y=0 is already id 7.
	if err := lvl.SetBlock(ctx, pos, 7, 0); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}

	select {
	case ev := <-lvl.Changes():
		t.Fatalf("unexpected event for a no-op set: %+v", ev)
	default:
	}
}

func TestChunkPosAndLocalConversion(t *testing.T) {
	cases := []struct {
		pos     BlockPos
		wantCX  int32
		wantCZ  int32
		wantLX  int
		wantLZ  int
	}{
		{BlockPos{X: 0, Y: 0, Z: 0}, 0, 0, 0, 0},
		{BlockPos{X: 15, Y: 0, Z: 15}, 0, 0, 15, 15},
		{BlockPos{X: 16, Y: 0, Z: 16}, 1, 1, 0, 0},
		{BlockPos{X: -1, Y: 0, Z: -1}, -1, -1, 15, 15},
		{BlockPos{X: -16, Y: 0, Z: -17}, -1, -2, 0, 15},
	}
	for _, tc := range cases {
		cp := tc.pos.ChunkPos()
		if cp.X != tc.wantCX || cp.Z != tc.wantCZ {
			t.Errorf("%+v ChunkPos = %v, want (%d,%d)", tc.pos, cp, tc.wantCX, tc.wantCZ)
		}
		lx, _, lz := tc.pos.Local()
		if lx != tc.wantLX || lz != tc.wantLZ {
			t.Errorf("%+v Local = (%d,_,%d), want (%d,_,%d)", tc.pos, lx, lz, tc.wantLX, tc.wantLZ)
		}
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	lvl, cancel := newTestLevel(t)
	defer cancel()
	lvl.Spawn = BlockPos{X: 8, Y: 65, Z: 8}
	lvl.TimeOfDay = 6000

	path := filepath.Join(t.TempDir(), "level.dat")
	if err := lvl.SaveMetadata(path); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}

	reloaded := &Level{}
	if err := reloaded.LoadMetadata(path); err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if reloaded.Seed != lvl.Seed {
		t.Errorf("Seed = %d, want %d", reloaded.Seed, lvl.Seed)
	}
	if reloaded.Spawn != lvl.Spawn {
		t.Errorf("Spawn = %+v, want %+v", reloaded.Spawn, lvl.Spawn)
	}
	if reloaded.TimeOfDay != lvl.TimeOfDay {
		t.Errorf("TimeOfDay = %d, want %d", reloaded.TimeOfDay, lvl.TimeOfDay)
	}
}
