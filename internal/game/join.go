package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/ecs"
	"github.com/OCharnyshevich/beta14core/internal/loading"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
	"github.com/OCharnyshevich/beta14core/internal/session"
	"github.com/OCharnyshevich/beta14core/internal/view"
)

// ProtocolVersion is the only client protocol version this server accepts.
const ProtocolVersion = 14

const loginTimeout = 10 * time.Second

// joinRequest hands a session that has completed the handshake/login
// sequence over to the tick loop, which is the only goroutine allowed to
// touch the entity store and level tickets.
type joinRequest struct {
	session  *session.Session
	username string
}

// HandleConnection drives one TCP connection through handshake and login,
// then registers it with g and blocks until it disconnects. Call this in
// its own goroutine per accepted connection.
func HandleConnection(ctx context.Context, conn net.Conn, log *slog.Logger, g *Game) {
	sess := session.New(ctx, conn, log)
	defer sess.Close(nil)

	username, err := loginSequence(ctx, sess)
	if err != nil {
		log.Debug("login failed", "addr", conn.RemoteAddr(), "err", err)
		sess.Send(&protocol.DisconnectCB{Reason: err.Error()})
		return
	}

	select {
	case g.joins <- &joinRequest{session: sess, username: username}:
	case <-ctx.Done():
		return
	case <-sess.Closed():
		return
	}

	<-sess.Closed()
}

func loginSequence(ctx context.Context, sess *session.Session) (string, error) {
	hs, err := readInbound(ctx, sess)
	if err != nil {
		return "", fmt.Errorf("handshake: %w", err)
	}
	if _, ok := hs.(*protocol.HandshakeSB); !ok {
		return "", fmt.Errorf("expected handshake, got %T", hs)
	}
	sess.Send(&protocol.HandshakeCB{ConnectionHash: "-"})
	sess.SetState(protocol.Login)

	login, err := readInbound(ctx, sess)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	req, ok := login.(*protocol.LoginRequestSB)
	if !ok {
		return "", fmt.Errorf("expected login request, got %T", login)
	}
	if req.ProtocolVersion != ProtocolVersion {
		return "", fmt.Errorf("outdated client or server! I'm still on %d", ProtocolVersion)
	}
	if req.Username == "" {
		return "", errors.New("empty username")
	}

	sess.SetState(protocol.Play)
	return req.Username, nil
}

func readInbound(ctx context.Context, sess *session.Session) (protocol.Packet, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(loginTimeout):
		return nil, errors.New("timed out")
	case in, ok := <-sess.Inbound():
		if !ok {
			return nil, errors.New("connection closed")
		}
		if in.Err != nil {
			return nil, in.Err
		}
		return in.Packet, nil
	}
}

// admit finishes registering a joined session: entity spawn, initial
// chunk load, and the packets the client needs before Play traffic makes
// sense. Only ever called from the tick loop.
func (g *Game) admit(req *joinRequest) {
	id := g.Entities.Spawn()
	g.Entities.Advance() // make id immediately queryable within this tick

	spawn := g.Level.Spawn
	pos := Position{X: float64(spawn.X) + 0.5, Y: float64(spawn.Y), Z: float64(spawn.Z) + 0.5}

	inv := NewInventory()
	p := &Player{
		EntityID:  id,
		NetworkID: g.allocNetworkID(),
		UUID:      offlineUUID(req.username),
		Username:  req.username,
		Session:   req.session,
		Position:  pos,
		Gamemode:  g.Config.DefaultGamemode,
		Health:    20,
		Hunger:    20,
		Inventory: inv,
		Window:    NewInventoryWindow(inv),
		Visible:   make(map[ecs.EntityID]bool),
		sub:       view.New(loading.Ticket(id), g.Level),
	}
	ecs.Set(g.Entities, id, p)
	ecs.SetEvent(g.Entities, id, EntityCreateEvent{})

	if g.PlayerDataDir != "" {
		if err := LoadPlayerData(p, g.PlayerDataDir); err != nil {
			g.Log.Error("load player data", "username", p.Username, "err", err)
		}
		pos = p.Position
	}

	req.session.Send(&protocol.LoginResponseCB{
		EntityID:    p.NetworkID,
		LevelType:   "default",
		ServerMode:  int32(p.Gamemode),
		Dimension:   0,
		Difficulty:  1,
		WorldHeight: 128,
		MaxPlayers:  uint8(g.Config.MaxPlayers),
	})
	req.session.Send(&protocol.SpawnPositionCB{X: spawn.X, Y: spawn.Y, Z: spawn.Z})
	req.session.Send(&protocol.UpdateHealthCB{Health: p.Health, Food: p.Hunger, Saturation: 0})

	if update, err := p.sub.Move(context.Background(), req.session, pos.ChunkPos(), int32(g.Config.ChunkDistance)); err != nil {
		g.Log.Error("initial chunk load failed", "player", p.Username, "err", err)
		ecs.SetEvent(g.Entities, id, ChunkLoadFailEvent{Err: err})
	} else if len(update.Load) > 0 {
		ecs.SetEvent(g.Entities, id, ChunkLoadEvent{Positions: update.Load})
	}
	p.Teleport(pos)
	ecs.SetEvent(g.Entities, id, PlayerSpawnEvent{Position: pos})

	g.Log.Info("player joined", "username", p.Username, "entity", id, "uuid", p.UUID)
	ecs.SetEvent(g.Entities, id, PlayerJoinEvent{Username: p.Username})
}

// leave tears a player down: subscription tickets released, entity
// despawned, the rest of the players told they left. Called only from
// processRemovalsSystem, never directly from drainInboundSystem, so it
// always runs with the removed player still queryable for one more system
// and the visibility cleanup below can still reach every other player.
func (g *Game) leave(p *Player) {
	if g.PlayerDataDir != "" {
		if err := SavePlayerData(p, g.PlayerDataDir); err != nil {
			g.Log.Error("save player data", "username", p.Username, "err", err)
		}
	}

	p.sub.Close()
	g.Entities.Despawn(p.EntityID)

	for _, other := range ecs.Query[*Player](g.Entities) {
		if other.EntityID == p.EntityID {
			continue
		}
		if other.Visible[p.EntityID] {
			other.Session.Send(&protocol.DestroyEntityCB{EntityID: p.NetworkID})
			delete(other.Visible, p.EntityID)
		}
		other.Session.Send(&protocol.PlayerListItemCB{Name: p.Username, Online: false, Ping: 0})
	}

	g.Log.Info("player left", "username", p.Username, "entity", p.EntityID)
	g.Broadcast(fmt.Sprintf("%s left the game", p.Username))
}
