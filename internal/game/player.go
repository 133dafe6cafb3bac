package game

import (
	"crypto/md5"
	"math"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/beta14core/internal/ecs"
	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
	"github.com/OCharnyshevich/beta14core/internal/session"
	"github.com/OCharnyshevich/beta14core/internal/view"
	"github.com/OCharnyshevich/beta14core/internal/world"
)

// offlineUUID deterministically derives a player's UUID from their
// username, the same "OfflinePlayer:<name>" scheme vanilla offline-mode
// servers use: a version-3 UUID over the MD5 of that string alone, with no
// namespace prefix. A player's identity thus stays stable across restarts
// even though protocol v14 itself has no UUID field.
func offlineUUID(username string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum)
}

// Position is a player's exact location, as reported by the client.
type Position struct {
	X, Y, Z    float64
	Stance     float64
	Yaw, Pitch float32
	OnGround   bool
}

// BlockPos floors p to the block it occupies.
func (p Position) BlockPos() level.BlockPos {
	return level.BlockPos{X: int32(math.Floor(p.X)), Y: int32(math.Floor(p.Y)), Z: int32(math.Floor(p.Z))}
}

// ChunkPos returns the chunk column containing p.
func (p Position) ChunkPos() world.ChunkPos {
	return p.BlockPos().ChunkPos()
}

// Player is one connected client's full in-game state, stored as a
// single ecs component so systems can query every connected player with
// ecs.Query[*Player] instead of Game keeping a second, parallel map.
type Player struct {
	EntityID  ecs.EntityID
	NetworkID int32 // distinct from EntityID: the id sent on the wire to other clients
	UUID      uuid.UUID
	Username  string
	Session   *session.Session

	Position         Position
	PreviousPosition Position

	Gamemode         uint8
	PreviousGamemode uint8

	Health        int16
	PreviousHealth int16
	Hunger        int16

	HotbarSlot int16
	Window     *Window
	Inventory  *Inventory
	Cursor     Slot

	// Visible tracks which other entities this player's client currently
	// has spawned, so entityVisibilitySystem only sends a spawn/destroy
	// packet on an actual visibility transition instead of every tick.
	Visible map[ecs.EntityID]bool

	// Chatbox queues outbound chat lines for flushChatSystem to send once
	// per tick, the mailbox-component shape the rest of the pipeline's
	// per-tick broadcast steps use instead of sending inline mid-system.
	Chatbox []string

	sub *view.Subscription
}

// dirtyPosition is a one-tick marker: set whenever a position/look packet
// is handled, cleared automatically by Store.Advance. updateViewsSystem
// only does subscription work for players that actually moved this tick.
type dirtyPosition struct{}

// Chat queues a chat line for this player, flushed by flushChatSystem at
// the end of the tick it was queued in.
func (p *Player) Chat(message string) {
	p.Chatbox = append(p.Chatbox, message)
}

// Teleport forces the client to a new position; the client must echo a
// PlayerPositionAndLookSB afterward per protocol, which is handled like
// any other movement packet once it arrives.
func (p *Player) Teleport(pos Position) {
	p.Position = pos
	p.PreviousPosition = pos
	p.Session.Send(&protocol.PlayerPositionAndLookCB{
		X: pos.X, Y: pos.Y, Stance: pos.Stance, Z: pos.Z,
		Yaw: pos.Yaw, Pitch: pos.Pitch, OnGround: pos.OnGround,
	})
}
