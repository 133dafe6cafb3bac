package game

import (
	"testing"

	"github.com/OCharnyshevich/beta14core/internal/ecs"
	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
)

// TestAdmitSetsJoinEvents exercises admit directly (without the extra
// Advance spawnTestPlayer performs) so the one-tick events it sets are
// still attached to the entity when the assertions run.
func TestAdmitSetsJoinEvents(t *testing.T) {
	g := newTestGame(t)
	sess, _ := newTestSession(t)
	g.admit(&joinRequest{session: sess, username: "Newcomer"})

	var id ecs.EntityID
	found := false
	for eid, p := range ecs.Query[*Player](g.Entities) {
		if p.Username == "Newcomer" {
			id, found = eid, true
		}
	}
	if !found {
		t.Fatalf("player not found after admit")
	}

	if _, ok := ecs.Get[EntityCreateEvent](g.Entities, id); !ok {
		t.Error("EntityCreateEvent not set after admit")
	}
	if _, ok := ecs.Get[PlayerSpawnEvent](g.Entities, id); !ok {
		t.Error("PlayerSpawnEvent not set after admit")
	}
	if ev, ok := ecs.Get[PlayerJoinEvent](g.Entities, id); !ok {
		t.Error("PlayerJoinEvent not set after admit")
	} else if ev.Username != "Newcomer" {
		t.Errorf("PlayerJoinEvent.Username = %q, want %q", ev.Username, "Newcomer")
	}
	if ev, ok := ecs.Get[ChunkLoadEvent](g.Entities, id); !ok {
		t.Error("ChunkLoadEvent not set after admit's initial chunk burst")
	} else if len(ev.Positions) == 0 {
		t.Error("ChunkLoadEvent.Positions is empty despite a positive chunk distance")
	}

	g.Entities.Advance()
	if _, ok := ecs.Get[PlayerJoinEvent](g.Entities, id); ok {
		t.Error("PlayerJoinEvent still set after Advance")
	}
}

func TestKillSetsDeathThenSpawnEvent(t *testing.T) {
	g := newTestGame(t)
	p := spawnTestPlayer(t, g, "Victim")

	g.kill(p)

	if _, ok := ecs.Get[EntityDeathEvent](g.Entities, p.EntityID); !ok {
		t.Error("EntityDeathEvent not set after kill")
	}
	if _, ok := ecs.Get[PlayerSpawnEvent](g.Entities, p.EntityID); !ok {
		t.Error("PlayerSpawnEvent not set after kill's respawn")
	}
}

func TestHandlePlacementSetsBlockPlacementEvent(t *testing.T) {
	g := newTestGame(t)
	p := spawnTestPlayer(t, g, "Builder")
	p.Inventory.Hotbar[0] = Slot{ItemID: 3, Count: 1}
	p.HotbarSlot = 0

	pk := &protocol.PlayerBlockPlacementSB{
		X: 0, Y: 63, Z: 0, Face: 1, ItemID: 3, Amount: 1,
	}
	g.handlePlacement(p, pk)

	ev, ok := ecs.Get[BlockPlacementEvent](g.Entities, p.EntityID)
	if !ok {
		t.Fatalf("BlockPlacementEvent not set after handlePlacement")
	}
	want := level.BlockPos{X: 0, Y: 64, Z: 0}
	if ev.Pos != want {
		t.Errorf("BlockPlacementEvent.Pos = %+v, want %+v", ev.Pos, want)
	}
}

func TestHandlePlacementSkipsEventWhenHeldSlotEmpty(t *testing.T) {
	g := newTestGame(t)
	p := spawnTestPlayer(t, g, "EmptyHanded")
	p.HotbarSlot = 0 // Hotbar[0] left zero-value, i.e. empty

	pk := &protocol.PlayerBlockPlacementSB{X: 0, Y: 63, Z: 0, Face: 1, ItemID: 3, Amount: 1}
	g.handlePlacement(p, pk)

	if _, ok := ecs.Get[BlockPlacementEvent](g.Entities, p.EntityID); ok {
		t.Error("BlockPlacementEvent set despite no held item matching placement")
	}
}
