package level

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/OCharnyshevich/beta14core/internal/nbt"
)

// LoadMetadata reads a level.dat file's seed/spawn/time fields, leaving
// l's existing values untouched if path doesn't exist yet (a brand new
// world). level.dat is gzip-compressed NBT, unlike the region files'
// per-chunk zlib framing.
func (l *Level) LoadMetadata(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open level.dat: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open level.dat gzip stream: %w", err)
	}
	defer gz.Close()

	_, root, err := nbt.NewReader(gz).ReadRoot()
	if err != nil {
		return fmt.Errorf("parse level.dat: %w", err)
	}
	dataTag, ok := root["Data"]
	if !ok {
		return fmt.Errorf("level.dat: missing Data compound")
	}
	data, ok := dataTag.(nbt.Compound)
	if !ok {
		return fmt.Errorf("level.dat: Data is not a compound")
	}

	if v, ok := data["RandomSeed"].(int64); ok {
		l.Seed = uint64(v)
	}
	if v, ok := data["SpawnX"].(int32); ok {
		l.Spawn.X = v
	}
	if v, ok := data["SpawnY"].(int32); ok {
		l.Spawn.Y = v
	}
	if v, ok := data["SpawnZ"].(int32); ok {
		l.Spawn.Z = v
	}
	if v, ok := data["Time"].(int64); ok {
		l.TimeOfDay = v
	}
	return nil
}

// SaveMetadata writes l's seed/spawn/time fields to path as gzip-compressed
// NBT, atomically via a temp file and rename.
func (l *Level) SaveMetadata(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create level.dat: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	gz := gzip.NewWriter(f)
	w := nbt.NewWriter(gz)

	w.BeginCompound("")
	w.BeginCompound("Data")
	w.WriteLong("RandomSeed", int64(l.Seed))
	w.WriteInt("SpawnX", l.Spawn.X)
	w.WriteInt("SpawnY", l.Spawn.Y)
	w.WriteInt("SpawnZ", l.Spawn.Z)
	w.WriteLong("Time", l.TimeOfDay)
	w.WriteString("LevelName", l.Name)
	w.EndCompound()
	w.EndCompound()

	if err := w.Err(); err != nil {
		return fmt.Errorf("encode level.dat: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close level.dat gzip stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close level.dat: %w", err)
	}
	return os.Rename(tmp, path)
}
