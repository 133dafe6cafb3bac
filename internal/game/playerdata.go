package game

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/OCharnyshevich/beta14core/internal/nbt"
)

// playerDataPath is where a player's persisted inventory/position lives
// between sessions, named after the level.dat convention: one gzip-
// compressed NBT file per player, keyed by username rather than a UUID
// since this protocol era never sends one.
func playerDataPath(dir, username string) string {
	return filepath.Join(dir, username+".dat")
}

// SavePlayerData writes p's position, gamemode, health and inventory to
// dir/<username>.dat, atomically via a temp file and rename, the same
// durability shape Level.SaveMetadata uses for level.dat.
func SavePlayerData(p *Player, dir string) error {
	path := playerDataPath(dir, p.Username)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create player data: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	gz := gzip.NewWriter(f)
	w := nbt.NewWriter(gz)

	w.WriteCompound("", func(w *nbt.Writer) {
		w.WriteDouble("PosX", p.Position.X)
		w.WriteDouble("PosY", p.Position.Y)
		w.WriteDouble("PosZ", p.Position.Z)
		w.WriteFloat("Yaw", p.Position.Yaw)
		w.WriteFloat("Pitch", p.Position.Pitch)
		w.WriteTagByte("Gamemode", p.Gamemode)
		w.WriteShort("Health", p.Health)
		w.WriteShort("Hunger", p.Hunger)
		writeInventory(w, p.Inventory)
	})

	if err := w.Err(); err != nil {
		return fmt.Errorf("encode player data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close player data gzip stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close player data: %w", err)
	}
	return os.Rename(tmp, path)
}

// writeInventory writes every non-empty slot of inv as one compound entry
// in an Inventory list tag, vanilla's own scheme of only persisting
// occupied slots instead of the full fixed-size array.
func writeInventory(w *nbt.Writer, inv *Inventory) {
	type entry struct {
		slot int16
		s    Slot
	}
	var entries []entry
	for i, s := range inv.Hotbar {
		if !s.IsEmpty() {
			entries = append(entries, entry{int16(36 + i), s})
		}
	}
	for i, s := range inv.Main {
		if !s.IsEmpty() {
			entries = append(entries, entry{int16(9 + i), s})
		}
	}
	for i, s := range inv.Armor {
		if !s.IsEmpty() {
			entries = append(entries, entry{int16(5 + i), s})
		}
	}

	w.BeginList("Inventory", nbt.TagCompound, int32(len(entries)))
	for _, e := range entries {
		// list elements carry no tag header: fields, then the End tag
		w.WriteShort("Slot", e.slot)
		w.WriteShort("id", e.s.ItemID)
		w.WriteTagByte("Count", byte(e.s.Count))
		w.WriteShort("Damage", e.s.Damage)
		w.EndCompound()
	}
}

// LoadPlayerData restores p's position, gamemode, health and inventory
// from dir/<username>.dat, leaving p's current (freshly admitted) values
// untouched if no file exists yet.
func LoadPlayerData(p *Player, dir string) error {
	path := playerDataPath(dir, p.Username)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open player data: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open player data gzip stream: %w", err)
	}
	defer gz.Close()

	_, root, err := nbt.NewReader(gz).ReadRoot()
	if err != nil {
		return fmt.Errorf("parse player data: %w", err)
	}

	if v, ok := root["PosX"].(float64); ok {
		p.Position.X = v
	}
	if v, ok := root["PosY"].(float64); ok {
		p.Position.Y = v
	}
	if v, ok := root["PosZ"].(float64); ok {
		p.Position.Z = v
	}
	if v, ok := root["Yaw"].(float32); ok {
		p.Position.Yaw = v
	}
	if v, ok := root["Pitch"].(float32); ok {
		p.Position.Pitch = v
	}
	if v, ok := root["Gamemode"].(byte); ok {
		p.Gamemode = v
	}
	if v, ok := root["Health"].(int16); ok {
		p.Health = v
	}
	if v, ok := root["Hunger"].(int16); ok {
		p.Hunger = v
	}
	if list, ok := root["Inventory"].(*nbt.List); ok {
		readInventory(list, p.Inventory)
	}
	return nil
}

func readInventory(list *nbt.List, inv *Inventory) {
	for _, item := range list.Items {
		c, ok := item.(nbt.Compound)
		if !ok {
			continue
		}
		slot, _ := c["Slot"].(int16)
		id, _ := c["id"].(int16)
		count, _ := c["Count"].(byte)
		damage, _ := c["Damage"].(int16)
		s := Slot{ItemID: id, Count: int8(count), Damage: damage}

		switch {
		case slot >= 36 && int(slot-36) < len(inv.Hotbar):
			inv.Hotbar[slot-36] = s
		case slot >= 9 && int(slot-9) < len(inv.Main):
			inv.Main[slot-9] = s
		case slot >= 5 && int(slot-5) < len(inv.Armor):
			inv.Armor[slot-5] = s
		}
	}
}
