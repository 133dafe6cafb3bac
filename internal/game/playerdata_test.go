package game

import (
	"testing"
)

func TestSaveLoadPlayerDataRoundTrips(t *testing.T) {
	dir := t.TempDir()

	inv := NewInventory()
	inv.Hotbar[0] = Slot{ItemID: 3, Count: 12, Damage: 0}
	inv.Main[5] = Slot{ItemID: 7, Count: 1, Damage: 2}

	p := &Player{
		Username:  "Saver",
		Position:  Position{X: 12.5, Y: 70, Z: -3.25, Yaw: 90, Pitch: -10},
		Gamemode:  1,
		Health:    15,
		Hunger:    18,
		Inventory: inv,
	}

	if err := SavePlayerData(p, dir); err != nil {
		t.Fatalf("SavePlayerData: %v", err)
	}

	loaded := &Player{Username: "Saver", Inventory: NewInventory()}
	if err := LoadPlayerData(loaded, dir); err != nil {
		t.Fatalf("LoadPlayerData: %v", err)
	}

	if loaded.Position != p.Position {
		t.Errorf("position = %+v, want %+v", loaded.Position, p.Position)
	}
	if loaded.Gamemode != p.Gamemode {
		t.Errorf("gamemode = %d, want %d", loaded.Gamemode, p.Gamemode)
	}
	if loaded.Health != p.Health {
		t.Errorf("health = %d, want %d", loaded.Health, p.Health)
	}
	if loaded.Hunger != p.Hunger {
		t.Errorf("hunger = %d, want %d", loaded.Hunger, p.Hunger)
	}
	if loaded.Inventory.Hotbar[0] != inv.Hotbar[0] {
		t.Errorf("hotbar[0] = %+v, want %+v", loaded.Inventory.Hotbar[0], inv.Hotbar[0])
	}
	if loaded.Inventory.Main[5] != inv.Main[5] {
		t.Errorf("main[5] = %+v, want %+v", loaded.Inventory.Main[5], inv.Main[5])
	}
}

func TestLoadPlayerDataMissingFileLeavesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := &Player{Username: "Nobody", Position: Position{X: 1, Y: 2, Z: 3}, Inventory: NewInventory()}

	if err := LoadPlayerData(p, dir); err != nil {
		t.Fatalf("LoadPlayerData: %v", err)
	}
	if p.Position != (Position{X: 1, Y: 2, Z: 3}) {
		t.Errorf("position changed despite no saved file: %+v", p.Position)
	}
}
