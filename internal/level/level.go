// Package level ties a chunk store and its ticket bookkeeping together
// into one dimension: the block get/set API every other system uses to
// touch the world, and the level.dat metadata (seed, spawn, time of day)
// that travels alongside the region files.
package level

import (
	"context"
	"fmt"

	"github.com/OCharnyshevich/beta14core/internal/chunkstore"
	"github.com/OCharnyshevich/beta14core/internal/loading"
	"github.com/OCharnyshevich/beta14core/internal/world"
)

// BlockPos is an absolute block coordinate.
type BlockPos struct {
	X, Y, Z int32
}

// ChunkPos returns the chunk column containing p.
func (p BlockPos) ChunkPos() world.ChunkPos {
	return world.ChunkPos{X: floorDiv(p.X, world.ChunkWidth), Z: floorDiv(p.Z, world.ChunkWidth)}
}

// Local returns p's coordinates local to its chunk, in [0,16)x[0,128)x[0,16).
func (p BlockPos) Local() (x, y, z int) {
	mod := func(v, m int32) int {
		r := int(v % m)
		if r < 0 {
			r += int(m)
		}
		return r
	}
	return mod(p.X, world.ChunkWidth), int(p.Y), mod(p.Z, world.ChunkWidth)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// BlockChangeEvent reports a single block's id/metadata transition, for
// the lighting worker and view broadcast to react to.
type BlockChangeEvent struct {
	Pos              BlockPos
	OldID, OldMeta   byte
	NewID, NewMeta   byte
}

// Level is one dimension: its chunk store, ticket manager, and metadata.
type Level struct {
	Name string
	Seed uint64
	Spawn BlockPos
	TimeOfDay int64

	store   *chunkstore.Store
	tickets *loading.Manager
	changes chan BlockChangeEvent
}

// New wires a Level on top of an already-constructed store (the caller
// starts store.Serve separately, since its lifetime is the dimension's).
func New(name string, store *chunkstore.Store, seed uint64) *Level {
	return &Level{
		Name:    name,
		Seed:    seed,
		store:   store,
		tickets: loading.NewManager(store),
		changes: make(chan BlockChangeEvent, 256),
	}
}

// Tickets exposes the ticket manager for the view system to add/remove
// per-player chunk claims against.
func (l *Level) Tickets() *loading.Manager {
	return l.tickets
}

// Store exposes the backing chunk store for components (the lighting
// worker) that need store-level operations Level doesn't wrap.
func (l *Level) Store() *chunkstore.Store {
	return l.store
}

// Changes exposes the block-change event stream.
func (l *Level) Changes() <-chan BlockChangeEvent {
	return l.changes
}

// GetBlock reads the block id and metadata at pos. The containing chunk is
// transiently acquired and released for the duration of the read — callers
// making many reads against chunks they already hold a ticket for should
// prefer working directly against the ChunkHandle.
func (l *Level) GetBlock(ctx context.Context, pos BlockPos) (id, meta byte, err error) {
	h, err := l.store.Acquire(ctx, pos.ChunkPos())
	if err != nil {
		return 0, 0, fmt.Errorf("level: get block %+v: %w", pos, err)
	}
	defer l.store.Release(pos.ChunkPos())

	x, y, z := pos.Local()
	h.Read(func(c *world.Chunk) {
		id = c.BlockAt(x, y, z)
		meta = c.MetadataAt(x, y, z)
	})
	return id, meta, nil
}

// SetBlock writes id/metadata at pos and emits a BlockChangeEvent with the
// prior values, unless nothing actually changed.
func (l *Level) SetBlock(ctx context.Context, pos BlockPos, id, meta byte) error {
	h, err := l.store.Acquire(ctx, pos.ChunkPos())
	if err != nil {
		return fmt.Errorf("level: set block %+v: %w", pos, err)
	}
	defer l.store.Release(pos.ChunkPos())

	x, y, z := pos.Local()
	var oldID, oldMeta byte
	h.Write(func(c *world.Chunk) {
		oldID = c.BlockAt(x, y, z)
		oldMeta = c.MetadataAt(x, y, z)
		c.SetBlockAt(x, y, z, id)
		c.SetMetadataAt(x, y, z, meta)
	})

	if oldID == id && oldMeta == meta {
		return nil
	}

	event := BlockChangeEvent{Pos: pos, OldID: oldID, OldMeta: oldMeta, NewID: id, NewMeta: meta}
	select {
	case l.changes <- event:
	default:
		// The change channel only back-pressures an overwhelmed consumer;
		// dropping here would lose a real edit, so block instead. This can
		// only stall the caller's own goroutine, never chunkstore's loop.
		l.changes <- event
	}
	return nil
}
