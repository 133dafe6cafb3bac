package game

import (
	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/world"
)

// The types below are one-tick ecs.SetEvent components: each is attached to
// the entity it concerns for exactly the tick it's set, then dropped by
// Store.Advance regardless of which system observed it. They let a system
// further down the executor chain react to something an earlier system
// decided, without the two systems needing to call each other directly.

// PlayerJoinEvent marks the tick a player finished admission. playerJoinSystem
// consumes it to announce the new player to everyone already connected and
// to send the newcomer the existing tablist.
type PlayerJoinEvent struct {
	Username string
}

// EntityRemoveEvent marks an entity for teardown at the next
// processRemovalsSystem pass, set by drainInboundSystem when a session
// closes rather than calling leave directly, so despawn always happens from
// one place in the tick pipeline.
type EntityRemoveEvent struct{}

// ViewUpdateEvent reports how many chunks a player's view gained or lost
// this tick, set by updateViewsSystem off the view.Update a Subscription.Move
// call returns.
type ViewUpdateEvent struct {
	Loaded   int
	Unloaded int
}

// SneakEvent marks a crouch/uncrouch transition for the tick it happened,
// set by handleEntityAction.
type SneakEvent struct {
	Sneaking bool
}

// EntityCreateEvent marks the tick an entity was spawned into the store,
// set by admit right after ecs.Set. Distinct from PlayerJoinEvent, which
// marks the later point the player is fully registered and ready to be
// announced to everyone else.
type EntityCreateEvent struct{}

// EntityDeathEvent marks the tick an entity's health reached zero, set by
// kill alongside the EntityStatusCB death animation it broadcasts.
type EntityDeathEvent struct{}

// PlayerSpawnEvent marks the tick a player's position was (re)initialized
// at a spawn point — once on join, and again on every respawn after kill.
type PlayerSpawnEvent struct {
	Position Position
}

// BlockPlacementEvent marks the tick a player successfully placed a block,
// set by handlePlacement after the world write and slot update succeed.
type BlockPlacementEvent struct {
	Pos level.BlockPos
}

// ChangeWorldEvent would mark a player moving between dimensions. Defined
// for completeness with the rest of this set but never set: this server
// only ever runs a single dimension, so there is no transition to mark.
type ChangeWorldEvent struct {
	Dimension int8
}

// ChunkLoadEvent reports the chunk positions a Subscription.Move call just
// finished loading into view this tick.
type ChunkLoadEvent struct {
	Positions []world.ChunkPos
}

// ChunkLoadFailEvent marks a tick a Subscription.Move call failed to bring
// the requested view up to date, set instead of ChunkLoadEvent so a
// listener never has to treat "no event" as ambiguous between nothing-
// to-load and a swallowed error.
type ChunkLoadFailEvent struct {
	Err error
}
