package world

import (
	"bytes"
	"fmt"

	"github.com/OCharnyshevich/beta14core/internal/nbt"
)

// EncodeChunkNBT serializes c into the "Level" compound a region file
// stores one of per chunk. This mirrors the historical field set: fixed
// 32768-byte Blocks/Metadata-derived arrays (128-height, not the modern
// 256-height/section-list layout), xPos/zPos, LastUpdate, and the
// TerrainPopulated flag later generation passes check before running.
func EncodeChunkNBT(c *Chunk) ([]byte, error) {
	var buf bytes.Buffer
	w := nbt.NewWriter(&buf)

	w.BeginCompound("")
	w.BeginCompound("Level")
	w.WriteInt("xPos", c.Pos.X)
	w.WriteInt("zPos", c.Pos.Z)
	w.WriteLong("LastUpdate", c.LastUpdate)
	w.WriteTagByte("TerrainPopulated", boolByte(c.TerrainPopulated))
	w.WriteByteArray("Blocks", c.Blocks[:])
	w.WriteByteArray("Data", c.Metadata[:])
	w.WriteByteArray("SkyLight", c.SkyLight[:])
	w.WriteByteArray("BlockLight", c.BlockLight[:])
	w.WriteByteArray("HeightMap", c.HeightMap[:])

	w.BeginList("Entities", nbt.TagCompound, int32(len(c.Entities)))
	for _, e := range c.Entities {
		writeEntityCompound(w, e)
	}

	w.BeginList("TileEntities", nbt.TagCompound, int32(len(c.TileEntities)))
	for _, te := range c.TileEntities {
		writeTileEntityCompound(w, te)
	}

	w.EndCompound() // Level
	w.EndCompound() // root

	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("encode chunk %s: %w", c.Pos, err)
	}
	return buf.Bytes(), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// writeEntityCompound writes e as one element of a compound list: list
// elements carry no tag header, only their fields and the closing End tag.
func writeEntityCompound(w *nbt.Writer, e Entity) {
	w.WriteString("id", e.ID)
	writeDataFields(w, e.Data)
	w.EndCompound()
}

// writeTileEntityCompound writes te as one headerless compound-list element.
func writeTileEntityCompound(w *nbt.Writer, te TileEntity) {
	w.WriteString("id", te.ID)
	w.WriteInt("x", te.X)
	w.WriteInt("y", te.Y)
	w.WriteInt("z", te.Z)
	writeDataFields(w, te.Data)
	w.EndCompound()
}

// writeDataFields writes only the scalar field kinds a block entity's
// opaque Data map realistically holds (item slots are encoded upstream
// into nested compounds by the inventory package, not here).
func writeDataFields(w *nbt.Writer, data map[string]any) {
	for k, v := range data {
		switch val := v.(type) {
		case int32:
			w.WriteInt(k, val)
		case int16:
			w.WriteShort(k, val)
		case byte:
			w.WriteTagByte(k, val)
		case string:
			w.WriteString(k, val)
		case []byte:
			w.WriteByteArray(k, val)
		}
	}
}

// DecodeChunkNBT parses data (the decompressed payload stored in a region
// file) back into a Chunk.
func DecodeChunkNBT(data []byte) (*Chunk, error) {
	r := nbt.NewReader(bytes.NewReader(data))
	_, root, err := r.ReadRoot()
	if err != nil {
		return nil, fmt.Errorf("decode chunk root: %w", err)
	}
	levelTag, ok := root["Level"]
	if !ok {
		return nil, fmt.Errorf("decode chunk: missing Level compound")
	}
	level, ok := levelTag.(nbt.Compound)
	if !ok {
		return nil, fmt.Errorf("decode chunk: Level is not a compound")
	}

	c := &Chunk{
		Pos: ChunkPos{
			X: mustInt32(level, "xPos"),
			Z: mustInt32(level, "zPos"),
		},
	}
	if v, ok := level["LastUpdate"].(int64); ok {
		c.LastUpdate = v
	}
	if v, ok := level["TerrainPopulated"].(byte); ok {
		c.TerrainPopulated = v != 0
	}
	copyByteArray(level, "Blocks", c.Blocks[:])
	copyByteArray(level, "Data", c.Metadata[:])
	copyByteArray(level, "SkyLight", c.SkyLight[:])
	copyByteArray(level, "BlockLight", c.BlockLight[:])
	copyByteArray(level, "HeightMap", c.HeightMap[:])

	if list, ok := level["Entities"].(*nbt.List); ok {
		for _, item := range list.Items {
			if comp, ok := item.(nbt.Compound); ok {
				c.Entities = append(c.Entities, entityFromCompound(comp))
			}
		}
	}
	if list, ok := level["TileEntities"].(*nbt.List); ok {
		for _, item := range list.Items {
			if comp, ok := item.(nbt.Compound); ok {
				c.TileEntities = append(c.TileEntities, tileEntityFromCompound(comp))
			}
		}
	}

	return c, nil
}

func mustInt32(c nbt.Compound, key string) int32 {
	if v, ok := c[key].(int32); ok {
		return v
	}
	return 0
}

func copyByteArray(c nbt.Compound, key string, dst []byte) {
	if v, ok := c[key].([]byte); ok {
		copy(dst, v)
	}
}

func entityFromCompound(c nbt.Compound) Entity {
	e := Entity{Data: map[string]any{}}
	for k, v := range c {
		if k == "id" {
			if s, ok := v.(string); ok {
				e.ID = s
				continue
			}
		}
		e.Data[k] = v
	}
	return e
}

func tileEntityFromCompound(c nbt.Compound) TileEntity {
	te := TileEntity{Data: map[string]any{}}
	for k, v := range c {
		switch k {
		case "id":
			if s, ok := v.(string); ok {
				te.ID = s
				continue
			}
		case "x":
			if n, ok := v.(int32); ok {
				te.X = n
				continue
			}
		case "y":
			if n, ok := v.(int32); ok {
				te.Y = n
				continue
			}
		case "z":
			if n, ok := v.(int32); ok {
				te.Z = n
				continue
			}
		}
		te.Data[k] = v
	}
	return te
}
