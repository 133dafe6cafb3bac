// Package lighting recomputes block and sky light after terrain or block
// changes, off the goroutine that made the change, driven by a request
// channel much like this module's single-goroutine chunkstore event loop.
package lighting

import (
	"context"
	"log/slog"

	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/world"
)

// Request asks the worker to recompute lighting for one chunk column.
type Request struct {
	Pos world.ChunkPos
}

// Worker drains a queue of chunk-recompute requests against a single
// Level, serially, so concurrent requests for the same chunk never race
// on its light arrays.
type Worker struct {
	level *level.Level
	log   *slog.Logger
	in    chan Request
}

// NewWorker returns a Worker over lvl with a reasonably deep request
// buffer; Enqueue blocks once it's full rather than dropping a request,
// since a dropped recompute leaves a chunk with stale lighting forever.
func NewWorker(lvl *level.Level, log *slog.Logger) *Worker {
	return &Worker{level: lvl, log: log, in: make(chan Request, 256)}
}

// Enqueue requests a relight of pos. Safe to call from any goroutine.
func (w *Worker) Enqueue(pos world.ChunkPos) {
	w.in <- Request{Pos: pos}
}

// Serve processes requests until ctx is cancelled.
func (w *Worker) Serve(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.in:
			w.process(ctx, req)
		}
	}
}

func (w *Worker) process(ctx context.Context, req Request) {
	h, err := w.level.Store().Acquire(ctx, req.Pos)
	if err != nil {
		w.log.Error("lighting: acquire chunk", "pos", req.Pos, "err", err)
		return
	}
	defer w.level.Store().Release(req.Pos)

	h.Write(func(c *world.Chunk) {
		RecomputeSkylight(c)
		RecomputeBlockLight(c)
	})
}
