package game

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/ecs"
	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
	"github.com/OCharnyshevich/beta14core/internal/session"
)

// captureConn accumulates every byte a session's writeLoop ever flushed to
// its client side, so a test can assert a specific packet was actually put
// on the wire instead of only checking server-side state.
type captureConn struct {
	mu  sync.Mutex
	buf []byte
}

func (c *captureConn) write(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = append(c.buf, p...)
}

func (c *captureConn) snapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.buf))
	copy(out, c.buf)
	return out
}

// waitForBytes polls cap until want appears in the captured stream or
// timeout elapses.
func waitForBytes(t *testing.T, cap *captureConn, want []byte, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if bytes.Contains(cap.snapshot(), want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected bytes not observed within %s: % x", timeout, want)
}

func assertNoBytes(t *testing.T, cap *captureConn, unwanted []byte, settle time.Duration) {
	t.Helper()
	time.Sleep(settle)
	if bytes.Contains(cap.snapshot(), unwanted) {
		t.Fatalf("unexpected bytes observed: % x", unwanted)
	}
}

// spawnCapturingPlayer admits a player over a session whose client side is
// continuously drained into a captureConn instead of discarded, so outbound
// packets remain inspectable after the fact.
func spawnCapturingPlayer(t *testing.T, g *Game, username string) (*Player, *captureConn) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })

	log := slog.New(slog.DiscardHandler)
	sess := session.New(context.Background(), serverConn, log)
	t.Cleanup(func() { sess.Close(nil) })

	cap := &captureConn{}
	go func() {
		buf := make([]byte, 8*1024)
		for {
			n, err := clientConn.Read(buf)
			if n > 0 {
				cap.write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	g.admit(&joinRequest{session: sess, username: username})
	g.Entities.Advance()

	var p *Player
	for _, pl := range ecs.Query[*Player](g.Entities) {
		if pl.Username == username {
			p = pl
		}
	}
	if p == nil {
		t.Fatalf("player %q not found after admit", username)
	}
	return p, cap
}

func TestBroadcastBlockChangesSystemSendsBlockChangeCB(t *testing.T) {
	g := newTestGame(t)
	_, cap := spawnCapturingPlayer(t, g, "Watcher")

	pos := level.BlockPos{X: 0, Y: 64, Z: 0}
	if err := g.Level.SetBlock(context.Background(), pos, 5, 0); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}

	if err := broadcastBlockChangesSystem(g, g.Entities); err != nil {
		t.Fatalf("broadcastBlockChangesSystem: %v", err)
	}

	want, err := protocol.Encode(&protocol.BlockChangeCB{X: pos.X, Y: int8(pos.Y), Z: pos.Z, BlockID: 5, Metadata: 0})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	waitForBytes(t, cap, want, time.Second)
}

func TestBroadcastBlockChangesSystemSkipsPlayersOutOfView(t *testing.T) {
	g := newTestGame(t)
	_, cap := spawnCapturingPlayer(t, g, "Watcher")

	// Far outside the view distance newTestGame configures (1 chunk).
	pos := level.BlockPos{X: 0, Y: 64, Z: 5000}
	if err := g.Level.SetBlock(context.Background(), pos, 5, 0); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}

	if err := broadcastBlockChangesSystem(g, g.Entities); err != nil {
		t.Fatalf("broadcastBlockChangesSystem: %v", err)
	}

	want, err := protocol.Encode(&protocol.BlockChangeCB{X: pos.X, Y: int8(pos.Y), Z: pos.Z, BlockID: 5, Metadata: 0})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	assertNoBytes(t, cap, want, 100*time.Millisecond)
}

func TestEntityVisibilitySystemSpawnsAndDestroysAcrossPlayers(t *testing.T) {
	g := newTestGame(t)
	a, capA := spawnCapturingPlayer(t, g, "Alice")
	_, capB := spawnCapturingPlayer(t, g, "Bob")

	if err := entityVisibilitySystem(g, g.Entities); err != nil {
		t.Fatalf("entityVisibilitySystem: %v", err)
	}

	wantSpawnOfA, err := protocol.Encode(&protocol.NamedEntitySpawnCB{
		EntityID: a.NetworkID, Name: a.Username,
		X: a.Position.X, Y: a.Position.Y, Z: a.Position.Z,
		Yaw: a.Position.Yaw, Pitch: a.Position.Pitch,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	waitForBytes(t, capB, wantSpawnOfA, time.Second)

	// Move Alice far enough away that Bob's view no longer contains her.
	a.Position = Position{X: 100000, Y: 64, Z: 100000}
	if err := entityVisibilitySystem(g, g.Entities); err != nil {
		t.Fatalf("entityVisibilitySystem: %v", err)
	}

	wantDestroyOfA, err := protocol.Encode(&protocol.DestroyEntityCB{EntityID: a.NetworkID})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	waitForBytes(t, capB, wantDestroyOfA, time.Second)
	_ = capA
}
