// Package game is the tick loop: it owns the one goroutine that is ever
// allowed to touch the entity store, runs registered systems against it
// every tick, and drains each connected player's inbound packet queue in
// between. Everything that needs to mutate shared server state funnels
// through this loop via channels, the same single-goroutine-owns-state
// shape as chunkstore.Store and loading.Manager.
package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/command"
	"github.com/OCharnyshevich/beta14core/internal/config"
	"github.com/OCharnyshevich/beta14core/internal/ecs"
	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/lighting"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
)

// Game is the whole running server: one level, one entity store, one
// tick loop, and the registries everything else hangs off of.
type Game struct {
	Config   *config.Config
	Log      *slog.Logger
	Level    *level.Level
	Entities *ecs.Store
	Lighting *lighting.Worker
	Commands *command.Registry
	Ops      *config.OpList

	// PlayerDataDir is where per-player inventory/position files are read
	// on join and written on leave. Empty disables persistence entirely
	// (used by tests).
	PlayerDataDir string

	executor *ecs.Executor[*Game]
	joins    chan *joinRequest
	stop     chan struct{}

	tickCount     int64
	lastPing      time.Time
	nextNetworkID int32
}

// New wires a Game around an already-constructed Level and Worker. The
// caller starts lvl's store and lighting's Serve loop separately, since
// their lifetime spans dimension changes Game itself doesn't model yet.
func New(cfg *config.Config, log *slog.Logger, lvl *level.Level, lw *lighting.Worker, ops *config.OpList) *Game {
	g := &Game{
		Config:   cfg,
		Log:      log,
		Level:    lvl,
		Entities: ecs.NewStore(),
		Lighting: lw,
		Commands: command.NewRegistry(),
		Ops:      ops,
		joins:    make(chan *joinRequest, 32),
		stop:     make(chan struct{}),
	}
	g.executor = ecs.NewExecutor[*Game](log, cfg.Logging.SlowTicks)
	g.executor.
		Add("time_update", timeUpdateSystem).
		Add("ping", pingSystem).
		Add("drain_inbound", drainInboundSystem).
		Add("update_views", updateViewsSystem).
		Add("entity_visibility", entityVisibilitySystem).
		Add("broadcast_block_changes", broadcastBlockChangesSystem).
		Add("player_join", playerJoinSystem).
		Add("process_removals", processRemovalsSystem).
		Add("flush_chat", flushChatSystem)
	registerBuiltinCommands(g)
	return g
}

// allocNetworkID returns the next id to advertise a freshly joined player
// under on the wire. Kept distinct from the player's ecs.EntityID so the
// two id spaces can evolve independently (EntityID is never reused within
// a server run; NetworkID only needs to be unique among currently visible
// entities).
func (g *Game) allocNetworkID() int32 {
	g.nextNetworkID++
	return g.nextNetworkID
}

// Stop requests the tick loop to exit at the end of its current tick.
func (g *Game) Stop() {
	close(g.stop)
}

// Run drives the fixed-rate tick loop until ctx is cancelled or Stop is
// called. A tick that overruns its budget is logged (gated by
// Config.Logging.SlowTicks) and the loop simply continues from wherever
// the ticker fires next — ticks are never queued up to "catch up".
func (g *Game) Run(ctx context.Context) {
	tps := g.Config.TPS
	if tps <= 0 {
		tps = 20
	}
	period := time.Second / time.Duration(tps)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-g.stop:
			return
		case start := <-ticker.C:
			g.tick()
			if elapsed := time.Since(start); elapsed > period && g.Config.Logging.SlowTicks {
				g.Log.Warn("slow tick", "tick", g.tickCount, "elapsed", elapsed, "budget", period)
			}
		case req := <-g.joins:
			g.admit(req)
		}
	}
}

func (g *Game) tick() {
	g.tickCount++
	g.executor.Run(g, g.Entities)
	g.Entities.Advance()
}

// PermissionLevelFor reports a username's command permission level: 5 for
// the console handled separately, 4 for an opped player, 0 otherwise.
func (g *Game) PermissionLevelFor(username string) int {
	if g.Ops.IsOp(username) {
		return command.OpPermissionLevel
	}
	return 0
}

// Broadcast sends message as chat to every connected player.
func (g *Game) Broadcast(message string) {
	for _, p := range ecs.Query[*Player](g.Entities) {
		p.Chat(message)
	}
}

// BroadcastNearby sends pkt to every connected player whose current view
// contains the chunk pos falls in, so a world mutation only reaches
// clients that actually have that chunk loaded.
func (g *Game) BroadcastNearby(pos level.BlockPos, pkt protocol.Packet) {
	chunk := pos.ChunkPos()
	for _, p := range ecs.Query[*Player](g.Entities) {
		if p.sub.View().Contains(chunk) {
			p.Session.Send(pkt)
		}
	}
}

// consoleSource implements command.Source for stdin-originated commands.
type consoleSource struct{ g *Game }

func (consoleSource) Name() string        { return "CONSOLE" }
func (consoleSource) PermissionLevel() int { return command.ConsolePermissionLevel }

// RunConsoleLine dispatches a line read from stdin as a console command.
func (g *Game) RunConsoleLine(line string) {
	if err := g.Commands.Dispatch(consoleSource{g}, line); err != nil {
		g.Log.Error("console command failed", "line", line, "err", err)
	}
}
