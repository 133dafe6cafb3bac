// Package chunkstore owns chunk lifetime for one dimension: loading from
// disk, falling back to generation, handing out reference-counted handles,
// and evicting chunks nobody holds a reference to after a grace period.
// All cross-goroutine traffic goes through request channels served by one
// worker goroutine, so chunk-map mutation is never shared-memory
// concurrent.
package chunkstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/world"
	"github.com/OCharnyshevich/beta14core/internal/world/region"
)

// Generator produces terrain for a chunk that doesn't exist on disk yet.
type Generator interface {
	Generate(pos world.ChunkPos) (*world.Chunk, error)
}

// UnloadDelay is how long a chunk with zero references sits in the unused
// cache before it's evicted and saved. Cancelled if a new ticket arrives
// first.
const UnloadDelay = 10 * time.Second

type acquireRequest struct {
	pos  world.ChunkPos
	resp chan acquireResult
}

type acquireResult struct {
	handle *world.ChunkHandle
	err    error
}

type releaseRequest struct {
	pos world.ChunkPos
}

type saveAllRequest struct {
	done chan error
}

type sizeRequest struct {
	resp chan int
}

// generateResult is handed back to the store's event loop by a detached
// generation goroutine, once Generator.Generate returns.
type generateResult struct {
	pos   world.ChunkPos
	chunk *world.Chunk
	err   error
}

// Store serializes all chunk-map access onto one goroutine (run via Serve)
// reached through bounded request channels.
type Store struct {
	dir string
	gen Generator
	log *slog.Logger

	loaded map[world.ChunkPos]*world.ChunkHandle
	unused map[world.ChunkPos]*time.Timer

	// generating tracks chunks currently out on a detached generation
	// goroutine, along with every acquire request still waiting on it, so a
	// second Acquire for the same pos queues instead of starting a duplicate
	// generation.
	generating map[world.ChunkPos][]acquireRequest

	acquire   chan acquireRequest
	release   chan releaseRequest
	saveAll   chan saveAllRequest
	size      chan sizeRequest
	generated chan generateResult
	closed    chan struct{}

	unloadDelay time.Duration
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithUnloadDelay overrides UnloadDelay, mainly so tests don't have to wait
// 10 real seconds to observe an eviction.
func WithUnloadDelay(d time.Duration) Option {
	return func(s *Store) { s.unloadDelay = d }
}

// New creates a Store. Callers must run Serve in its own goroutine before
// issuing Acquire/Release calls.
func New(dir string, gen Generator, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		dir:         dir,
		gen:         gen,
		log:         log,
		loaded:      make(map[world.ChunkPos]*world.ChunkHandle),
		unused:      make(map[world.ChunkPos]*time.Timer),
		generating:  make(map[world.ChunkPos][]acquireRequest),
		acquire:     make(chan acquireRequest),
		release:     make(chan releaseRequest),
		saveAll:     make(chan saveAllRequest),
		size:        make(chan sizeRequest),
		generated:   make(chan generateResult, 16),
		closed:      make(chan struct{}),
		unloadDelay: UnloadDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve runs the store's single-goroutine event loop until ctx is
// cancelled. It must be started exactly once.
func (s *Store) Serve(ctx context.Context) {
	defer close(s.closed)

	evicted := make(chan world.ChunkPos, 16)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.acquire:
			s.doAcquire(req)
		case req := <-s.release:
			s.doRelease(req.pos, evicted)
		case pos := <-evicted:
			s.doEvict(pos)
		case req := <-s.saveAll:
			req.done <- s.doSaveAll()
		case req := <-s.size:
			req.resp <- len(s.loaded)
		case res := <-s.generated:
			s.doGenerated(res)
		}
	}
}

// Acquire returns a referenced handle for pos, loading it from disk or
// generating it if necessary. The caller must call Release exactly once
// per successful Acquire.
func (s *Store) Acquire(ctx context.Context, pos world.ChunkPos) (*world.ChunkHandle, error) {
	resp := make(chan acquireResult, 1)
	select {
	case s.acquire <- acquireRequest{pos: pos, resp: resp}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, fmt.Errorf("chunkstore: closed")
	}
	select {
	case r := <-resp:
		return r.handle, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release gives back one reference obtained from Acquire. It does not
// block on the store's event loop finishing the eviction bookkeeping.
func (s *Store) Release(pos world.ChunkPos) {
	select {
	case s.release <- releaseRequest{pos: pos}:
	case <-s.closed:
	}
}

// SaveAll persists every currently loaded chunk to its region file,
// blocking until complete. Used on shutdown.
func (s *Store) SaveAll(ctx context.Context) error {
	done := make(chan error, 1)
	select {
	case s.saveAll <- saveAllRequest{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return fmt.Errorf("chunkstore: closed")
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doAcquire resolves req against the resident map and disk without ever
// calling into the generator itself: generation for a chunk missing from
// both is handed off to a detached goroutine (see doGenerated) so that one
// slow Generate call never blocks acquires/releases/saves for every other
// chunk in the dimension. Disk I/O here is still single-threaded, running
// only on this goroutine.
func (s *Store) doAcquire(req acquireRequest) {
	pos := req.pos
	if h, ok := s.loaded[pos]; ok {
		if timer, pending := s.unused[pos]; pending {
			timer.Stop()
			delete(s.unused, pos)
		}
		req.resp <- acquireResult{handle: h.Acquire()}
		return
	}

	if waiters, pending := s.generating[pos]; pending {
		s.generating[pos] = append(waiters, req)
		return
	}

	chunk, err := region.Load(s.dir, pos)
	switch {
	case err == nil:
		h := world.NewHandle(chunk)
		s.loaded[pos] = h
		req.resp <- acquireResult{handle: h}
		return
	case err == region.ErrNotPresent:
		// fall through to async generation below
	default:
		req.resp <- acquireResult{err: fmt.Errorf("load chunk %s: %w", pos, err)}
		return
	}

	s.generating[pos] = []acquireRequest{req}
	gen := s.gen
	go func() {
		chunk, err := gen.Generate(pos)
		if err == nil {
			chunk.RecomputeHeightMap()
		}
		select {
		case s.generated <- generateResult{pos: pos, chunk: chunk, err: err}:
		case <-s.closed:
		}
	}()
}

// doGenerated runs on the store's goroutine once a detached Generate call
// finishes, resolving every acquire that queued up behind it in the
// meantime.
func (s *Store) doGenerated(res generateResult) {
	waiters := s.generating[res.pos]
	delete(s.generating, res.pos)

	if res.err != nil {
		err := fmt.Errorf("generate chunk %s: %w", res.pos, res.err)
		for _, w := range waiters {
			w.resp <- acquireResult{err: err}
		}
		return
	}

	h := world.NewHandle(res.chunk)
	s.loaded[res.pos] = h
	for i, w := range waiters {
		if i == 0 {
			w.resp <- acquireResult{handle: h}
			continue
		}
		w.resp <- acquireResult{handle: h.Acquire()}
	}
}

func (s *Store) doRelease(pos world.ChunkPos, evicted chan<- world.ChunkPos) {
	h, ok := s.loaded[pos]
	if !ok {
		return
	}
	if !h.Release() {
		return
	}
	timer := time.AfterFunc(s.unloadDelay, func() {
		select {
		case evicted <- pos:
		case <-s.closed:
		}
	})
	s.unused[pos] = timer
}

func (s *Store) doEvict(pos world.ChunkPos) {
	h, ok := s.loaded[pos]
	if !ok {
		return
	}
	if _, stillPending := s.unused[pos]; !stillPending {
		// a new Acquire cancelled this timer before it fired; nothing to do
		return
	}
	if h.RefCount() > 0 {
		delete(s.unused, pos)
		return
	}
	if err := s.saveOne(pos, h); err != nil {
		s.log.Error("save evicted chunk", "pos", pos, "err", err)
	}
	delete(s.unused, pos)
	delete(s.loaded, pos)
}

func (s *Store) saveOne(pos world.ChunkPos, h *world.ChunkHandle) error {
	var saveErr error
	h.Read(func(c *world.Chunk) {
		saveErr = region.Save(s.dir, pos.X>>5, pos.Z>>5, map[world.ChunkPos]*world.Chunk{pos: c})
	})
	return saveErr
}

func (s *Store) doSaveAll() error {
	byRegion := map[region.Pos]map[world.ChunkPos]*world.Chunk{}
	for pos, h := range s.loaded {
		rp := region.Pos{X: pos.X >> 5, Z: pos.Z >> 5}
		bucket, ok := byRegion[rp]
		if !ok {
			bucket = map[world.ChunkPos]*world.Chunk{}
			byRegion[rp] = bucket
		}
		h.Read(func(c *world.Chunk) {
			cp := *c
			bucket[pos] = &cp
		})
	}
	for rp, chunks := range byRegion {
		if err := region.Save(s.dir, rp.X, rp.Z, chunks); err != nil {
			return fmt.Errorf("save region %v: %w", rp, err)
		}
	}
	return nil
}

// Loaded reports how many chunks are currently resident, for metrics/tests.
// Safe to call concurrently with Serve: it round-trips through the same
// event loop as every other operation.
func (s *Store) Loaded() int {
	resp := make(chan int, 1)
	select {
	case s.size <- sizeRequest{resp: resp}:
	case <-s.closed:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-s.closed:
		return 0
	}
}
