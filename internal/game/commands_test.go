package game

import (
	"testing"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/protocol"
)

func TestKillZeroesHealthThenRespawns(t *testing.T) {
	g := newTestGame(t)
	p, cap := spawnCapturingPlayer(t, g, "Victim")

	g.kill(p)

	if p.Health != 20 {
		t.Errorf("health after kill = %d, want 20 (respawned)", p.Health)
	}

	wantStatus, err := protocol.Encode(&protocol.EntityStatusCB{EntityID: p.NetworkID, Status: 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	waitForBytes(t, cap, wantStatus, time.Second)
}

func TestGamemodeCommandChangesMode(t *testing.T) {
	g := newTestGame(t)
	op := spawnTestPlayer(t, g, "Op")
	target := spawnTestPlayer(t, g, "Target")
	g.Ops.Add("Op")

	src := playerSource{g, op}
	if err := g.Commands.Dispatch(src, "gamemode Target 1"); err != nil {
		t.Fatalf("dispatch gamemode: %v", err)
	}
	if target.Gamemode != 1 {
		t.Errorf("gamemode = %d, want 1", target.Gamemode)
	}
	if target.PreviousGamemode != 0 {
		t.Errorf("previous gamemode = %d, want 0", target.PreviousGamemode)
	}
}

func TestGamemodeCommandRejectsUnknownPlayer(t *testing.T) {
	g := newTestGame(t)
	op := spawnTestPlayer(t, g, "Op")
	g.Ops.Add("Op")

	src := playerSource{g, op}
	if err := g.Commands.Dispatch(src, "gamemode Ghost 1"); err == nil {
		t.Error("expected an error targeting a player who isn't connected")
	}
}

func TestFindPlayerLooksUpByUsername(t *testing.T) {
	g := newTestGame(t)
	p := spawnTestPlayer(t, g, "Findme")

	if got := g.findPlayer("Findme"); got != p {
		t.Errorf("findPlayer returned %v, want %v", got, p)
	}
	if got := g.findPlayer("Nobody"); got != nil {
		t.Errorf("findPlayer(%q) = %v, want nil", "Nobody", got)
	}
}
