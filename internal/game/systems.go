package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/ecs"
	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
)

// keepAliveTimeout is how long a client can go without acknowledging a
// keep-alive before it's dropped as unresponsive.
const keepAliveTimeout = 30 * time.Second

// keepAliveInterval is how often a fresh keep-alive is sent to each
// connected player.
const keepAliveInterval = 2 * time.Second

// timeUpdateSystem pushes the world clock to every player every tick,
// matching the reference server's own unthrottled per-tick broadcast.
func timeUpdateSystem(g *Game, s *ecs.Store) error {
	g.Level.TimeOfDay = (g.Level.TimeOfDay + 1) % 24000
	for _, p := range ecs.Query[*Player](s) {
		p.Session.Send(&protocol.TimeUpdateCB{Time: g.Level.TimeOfDay})
	}
	return nil
}

// pingSystem sends a keep-alive to every player at a fixed interval and
// disconnects anyone who has gone keepAliveTimeout past their last one
// unanswered.
func pingSystem(g *Game, s *ecs.Store) error {
	now := time.Now()
	due := g.lastPing.IsZero() || now.Sub(g.lastPing) >= keepAliveInterval
	if due {
		g.lastPing = now
	}
	for _, p := range ecs.Query[*Player](s) {
		if p.Session.KeepAliveOverdue(keepAliveTimeout) {
			p.Session.Close(errKeepAliveTimeout)
			continue
		}
		if due {
			p.Session.KeepAlive()
		}
	}
	return nil
}

var errKeepAliveTimeout = errors.New("keep-alive timed out")

// drainInboundSystem pulls every pending packet off each player's session
// and applies it, then marks sessions that have closed for teardown. This
// is the only place Play-state packets are interpreted. Teardown itself
// happens in processRemovalsSystem, later in the same tick, so every
// system in between still sees the leaving player as a normal query hit.
func drainInboundSystem(g *Game, s *ecs.Store) error {
	for id, p := range ecs.Query[*Player](s) {
		closed := false
	drain:
		for {
			select {
			case in, ok := <-p.Session.Inbound():
				if !ok {
					closed = true
					break drain
				}
				if in.Err != nil {
					closed = true
					break drain
				}
				g.handlePacket(p, in.Packet)
			default:
				break drain
			}
		}
		if closed {
			ecs.SetEvent(g.Entities, id, EntityRemoveEvent{})
		}
	}
	return nil
}

// processRemovalsSystem tears down every player whose session closed this
// tick, consuming the EntityRemoveEvent drainInboundSystem set for them.
func processRemovalsSystem(g *Game, s *ecs.Store) error {
	for id := range ecs.Query[EntityRemoveEvent](s) {
		p, ok := ecs.Get[*Player](s, id)
		if !ok {
			continue
		}
		g.leave(p)
	}
	return nil
}

// playerJoinSystem consumes PlayerJoinEvent, exchanging tablist entries
// between the new player and everyone already connected and announcing the
// join in chat.
func playerJoinSystem(g *Game, s *ecs.Store) error {
	for id, ev := range ecs.Query[PlayerJoinEvent](s) {
		p, ok := ecs.Get[*Player](s, id)
		if !ok {
			continue
		}
		for _, other := range ecs.Query[*Player](s) {
			if other.EntityID == p.EntityID {
				continue
			}
			other.Session.Send(&protocol.PlayerListItemCB{Name: p.Username, Online: true, Ping: 0})
			p.Session.Send(&protocol.PlayerListItemCB{Name: other.Username, Online: true, Ping: 0})
		}
		p.Session.Send(&protocol.PlayerListItemCB{Name: p.Username, Online: true, Ping: 0})
		g.Broadcast(fmt.Sprintf("%s joined the game", ev.Username))
	}
	return nil
}

// flushChatSystem sends every message queued in a player's Chatbox this
// tick, the one place ChatCB actually reaches the wire; Chat only appends
// to the mailbox so every chat source (player talk, commands, join/leave
// announcements) is flushed on the same per-tick cadence.
func flushChatSystem(g *Game, s *ecs.Store) error {
	for _, p := range ecs.Query[*Player](s) {
		for _, msg := range p.Chatbox {
			p.Session.Send(&protocol.ChatCB{Message: msg})
		}
		p.Chatbox = p.Chatbox[:0]
	}
	return nil
}

// broadcastBlockChangesSystem is the sole consumer of Level.Changes: it
// both requests a relight for the affected chunk (the role
// lighting.Worker.WatchLevel used to play) and sends a BlockChangeCB to
// every player whose view currently contains that chunk, satisfying the
// property that a committed block change reaches its subscribers before
// the tick that committed it ends.
func broadcastBlockChangesSystem(g *Game, s *ecs.Store) error {
	for {
		select {
		case ev := <-g.Level.Changes():
			g.Lighting.Enqueue(ev.Pos.ChunkPos())
			g.BroadcastNearby(ev.Pos, &protocol.BlockChangeCB{
				X:        ev.Pos.X,
				Y:        int8(ev.Pos.Y),
				Z:        ev.Pos.Z,
				BlockID:  int8(ev.NewID),
				Metadata: int8(ev.NewMeta),
			})
		default:
			return nil
		}
	}
}

// maxRelativeMoveDelta is the largest per-axis movement, in blocks, that
// still fits EntityRelativeMoveCB's signed-byte delta at the protocol's
// fixed-point scale of 32 units per block.
const maxRelativeMoveDelta = 127.0 / 32.0

func fitsRelativeMove(d float64) bool {
	return d >= -maxRelativeMoveDelta && d <= maxRelativeMoveDelta
}

// entityVisibilitySystem spawns and destroys other players on each
// player's client as they enter and leave view, and relays position
// updates for the ones that stay visible. Run after updateViewsSystem so a
// view that just moved this tick already reflects the new center.
func entityVisibilitySystem(g *Game, s *ecs.Store) error {
	players := ecs.Query[*Player](s)

	for _, subject := range players {
		dx := subject.Position.X - subject.PreviousPosition.X
		dy := subject.Position.Y - subject.PreviousPosition.Y
		dz := subject.Position.Z - subject.PreviousPosition.Z
		moved := dx != 0 || dy != 0 || dz != 0
		relative := fitsRelativeMove(dx) && fitsRelativeMove(dy) && fitsRelativeMove(dz)

		for _, viewer := range players {
			if viewer.EntityID == subject.EntityID {
				continue
			}
			visible := viewer.sub.View().Contains(subject.Position.ChunkPos())
			wasVisible := viewer.Visible[subject.EntityID]

			switch {
			case visible && !wasVisible:
				viewer.Session.Send(&protocol.NamedEntitySpawnCB{
					EntityID: subject.NetworkID,
					Name:     subject.Username,
					X:        subject.Position.X,
					Y:        subject.Position.Y,
					Z:        subject.Position.Z,
					Yaw:      subject.Position.Yaw,
					Pitch:    subject.Position.Pitch,
				})
				viewer.Visible[subject.EntityID] = true
			case !visible && wasVisible:
				viewer.Session.Send(&protocol.DestroyEntityCB{EntityID: subject.NetworkID})
				delete(viewer.Visible, subject.EntityID)
			case visible && wasVisible && moved:
				if relative {
					viewer.Session.Send(&protocol.EntityRelativeMoveCB{
						EntityID: subject.NetworkID,
						DX:       int8(dx * 32),
						DY:       int8(dy * 32),
						DZ:       int8(dz * 32),
					})
				} else {
					viewer.Session.Send(&protocol.EntityTeleportCB{
						EntityID: subject.NetworkID,
						X:        subject.Position.X,
						Y:        subject.Position.Y,
						Z:        subject.Position.Z,
						Yaw:      subject.Position.Yaw,
						Pitch:    subject.Position.Pitch,
					})
				}
			}
		}
	}

	for _, subject := range players {
		subject.PreviousPosition = subject.Position
	}
	return nil
}

func (g *Game) handlePacket(p *Player, pkt protocol.Packet) {
	switch pk := pkt.(type) {
	case *protocol.KeepAlive:
		p.Session.AckKeepAlive()
	case *protocol.PlayerPositionSB:
		p.Position.X, p.Position.Y, p.Position.Z = pk.X, pk.Y, pk.Z
		p.Position.Stance = pk.Stance
		p.Position.OnGround = pk.OnGround
		ecs.SetEvent(g.Entities, p.EntityID, dirtyPosition{})
	case *protocol.PlayerLookSB:
		p.Position.Yaw, p.Position.Pitch = pk.Yaw, pk.Pitch
		p.Position.OnGround = pk.OnGround
	case *protocol.PlayerPositionAndLookSB:
		p.Position.X, p.Position.Y, p.Position.Z = pk.X, pk.Y, pk.Z
		p.Position.Stance = pk.Stance
		p.Position.Yaw, p.Position.Pitch = pk.Yaw, pk.Pitch
		p.Position.OnGround = pk.OnGround
		ecs.SetEvent(g.Entities, p.EntityID, dirtyPosition{})
	case *protocol.PlayerSB:
		p.Position.OnGround = pk.OnGround
	case *protocol.ChatSB:
		g.handleChat(p, pk.Message)
	case *protocol.PlayerDiggingSB:
		g.handleDigging(p, pk)
	case *protocol.PlayerBlockPlacementSB:
		g.handlePlacement(p, pk)
	case *protocol.HeldItemChangeSB:
		if pk.Slot >= 0 && int(pk.Slot) < len(p.Inventory.Hotbar) {
			p.HotbarSlot = pk.Slot
		}
	case *protocol.WindowClickSB:
		g.handleWindowClick(p, pk)
	case *protocol.EntityActionSB:
		g.handleEntityAction(p, pk)
	}
}

func (g *Game) handleChat(p *Player, message string) {
	if strings.HasPrefix(message, "/") {
		src := playerSource{g, p}
		if err := g.Commands.Dispatch(src, message[1:]); err != nil {
			p.Chat(err.Error())
		}
		return
	}
	g.Broadcast("<" + p.Username + "> " + message)
}

// handleDigging applies a terminal dig (status 2, "block broken") as
// setting the target block to air and dropping its contents. Start/
// continue/stop statuses (0/1/3/4) are acknowledged implicitly by doing
// nothing — this server has no per-tool break-time model yet.
func (g *Game) handleDigging(p *Player, pk *protocol.PlayerDiggingSB) {
	const statusBroken = 2
	if pk.Status != statusBroken {
		return
	}
	ctx := context.Background()
	pos := level.BlockPos{X: pk.X, Y: int32(pk.Y), Z: pk.Z}

	oldID, oldMeta, err := g.Level.GetBlock(ctx, pos)
	if err != nil {
		g.Log.Error("get block", "pos", pos, "err", err)
		return
	}
	if err := g.Level.SetBlock(ctx, pos, 0, 0); err != nil {
		g.Log.Error("set block", "pos", pos, "err", err)
		return
	}
	if oldID != 0 {
		g.spawnDroppedItem(pos, oldID, oldMeta)
	}
}

// spawnDroppedItem announces a pickup entity at the center of pos to every
// player with that chunk in view. It's a one-shot visual spawn only — there
// is no persistent item-entity ticking or pickup-on-touch collection here,
// since that needs the entity-kind tick step a future pass would add.
func (g *Game) spawnDroppedItem(pos level.BlockPos, id, meta byte) {
	g.BroadcastNearby(pos, &protocol.PickupSpawnCB{
		EntityID: g.allocNetworkID(),
		ItemID:   int16(id),
		Count:    1,
		Damage:   int16(meta),
		X:        float64(pos.X) + 0.5,
		Y:        float64(pos.Y) + 0.5,
		Z:        float64(pos.Z) + 0.5,
	})
}

// handlePlacement places the held block against the targeted face, then
// decrements the hotbar stack that supplied it and pushes the updated slot
// back to the client.
func (g *Game) handlePlacement(p *Player, pk *protocol.PlayerBlockPlacementSB) {
	if pk.ItemID < 0 {
		return
	}
	held := p.HeldSlot()
	if held.IsEmpty() || held.ItemID != pk.ItemID {
		return
	}

	x, y, z := faceOffset(pk.X, int32(pk.Y), pk.Z, pk.Face)
	pos := level.BlockPos{X: x, Y: y, Z: z}
	if err := g.Level.SetBlock(context.Background(), pos, byte(pk.ItemID), byte(pk.Damage)); err != nil {
		g.Log.Error("place block", "pos", pos, "err", err)
		return
	}
	ecs.SetEvent(g.Entities, p.EntityID, BlockPlacementEvent{Pos: pos})

	held.Count--
	if held.Count <= 0 {
		*held = emptySlot
	}
	if slot, ok := p.Window.Untranslate(SectionHotbar, int(p.HotbarSlot)); ok {
		p.Session.Send(&protocol.SetSlotCB{
			WindowID:   p.Window.ID,
			Slot:       slot,
			ItemID:     held.ItemID,
			ItemCount:  held.Count,
			ItemDamage: held.Damage,
		})
	}
}

// handleWindowClick swaps the clicked slot's contents with the cursor, the
// simplest transaction that still exercises the real Window/Inventory
// model; it does not implement shift-click redistribution or crafting
// output consumption.
func (g *Game) handleWindowClick(p *Player, pk *protocol.WindowClickSB) {
	if p.Window == nil || pk.WindowID != p.Window.ID {
		p.Session.Send(&protocol.TransactionCB{WindowID: pk.WindowID, ActionNum: pk.ActionNum, Accepted: false})
		return
	}
	slot, ok := p.Window.Translate(pk.Slot)
	if !ok {
		p.Session.Send(&protocol.TransactionCB{WindowID: pk.WindowID, ActionNum: pk.ActionNum, Accepted: false})
		return
	}
	*slot, p.Cursor = p.Cursor, *slot
	p.Session.Send(&protocol.TransactionCB{WindowID: pk.WindowID, ActionNum: pk.ActionNum, Accepted: true})
}

// sneak action codes, Beta 1.8.1's EntityActionSB encoding.
const (
	entityActionCrouch   = 1
	entityActionUncrouch = 2
)

// encodeSneakMetadata packs the legacy single-byte "status flags" metadata
// entry (index 0, type byte) with the crouching bit (0x02) set or clear,
// terminated the way every metadata stream in this protocol era is.
func encodeSneakMetadata(sneaking bool) []byte {
	var flags byte
	if sneaking {
		flags = 0x02
	}
	return []byte{0x00, flags, 0x7F}
}

// handleEntityAction reacts to a crouch/uncrouch toggle: sets a one-tick
// SneakEvent for anything that wants to react server-side, and relays the
// visible metadata change to nearby clients.
func (g *Game) handleEntityAction(p *Player, pk *protocol.EntityActionSB) {
	if pk.Action != entityActionCrouch && pk.Action != entityActionUncrouch {
		return
	}
	sneaking := pk.Action == entityActionCrouch
	ecs.SetEvent(g.Entities, p.EntityID, SneakEvent{Sneaking: sneaking})
	g.BroadcastNearby(p.Position.BlockPos(), &protocol.EntityMetadataCB{
		EntityID: p.NetworkID,
		Data:     encodeSneakMetadata(sneaking),
	})
}

// faceOffset returns the block position adjacent to (x,y,z) on the given
// face (0=-Y,1=+Y,2=-Z,3=+Z,4=-X,5=+X), the standard Beta 1.8 face index.
func faceOffset(x, y, z int32, face int8) (int32, int32, int32) {
	switch face {
	case 0:
		return x, y - 1, z
	case 1:
		return x, y + 1, z
	case 2:
		return x, y, z - 1
	case 3:
		return x, y, z + 1
	case 4:
		return x - 1, y, z
	case 5:
		return x + 1, y, z
	default:
		return x, y, z
	}
}

// updateViewsSystem recomputes and sends the view diff for every player
// whose position changed this tick.
func updateViewsSystem(g *Game, s *ecs.Store) error {
	for id, p := range ecs.Query[*Player](s) {
		if _, moved := ecs.Get[dirtyPosition](s, id); !moved {
			continue
		}
		update, err := p.sub.Move(context.Background(), p.Session, p.Position.ChunkPos(), int32(g.Config.ChunkDistance))
		if err != nil {
			g.Log.Error("view update", "player", p.Username, "err", err)
			ecs.SetEvent(g.Entities, id, ChunkLoadFailEvent{Err: err})
			continue
		}
		ecs.SetEvent(g.Entities, id, ViewUpdateEvent{Loaded: len(update.Load), Unloaded: len(update.Unload)})
		if len(update.Load) > 0 {
			ecs.SetEvent(g.Entities, id, ChunkLoadEvent{Positions: update.Load})
		}
	}
	return nil
}

// playerSource implements command.Source for a player-originated command.
type playerSource struct {
	g *Game
	p *Player
}

func (s playerSource) Name() string { return s.p.Username }
func (s playerSource) PermissionLevel() int {
	return s.g.PermissionLevelFor(s.p.Username)
}
