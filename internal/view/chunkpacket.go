package view

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/OCharnyshevich/beta14core/internal/protocol"
	"github.com/OCharnyshevich/beta14core/internal/world"
)

// EncodeChunk builds the PreChunkCB/MapChunkCB pair that loads c on the
// client: Blocks, Metadata, BlockLight, and SkyLight concatenated in that
// order and zlib-compressed, matching the legacy column layout.
func EncodeChunk(c *world.Chunk) (*protocol.PreChunkCB, *protocol.MapChunkCB, error) {
	var raw bytes.Buffer
	raw.Write(c.Blocks[:])
	raw.Write(c.Metadata[:])
	raw.Write(c.BlockLight[:])
	raw.Write(c.SkyLight[:])

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		return nil, nil, fmt.Errorf("view: compress chunk %v: %w", c.Pos, err)
	}
	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("view: close chunk zlib stream %v: %w", c.Pos, err)
	}

	pre := &protocol.PreChunkCB{ChunkX: c.Pos.X, ChunkZ: c.Pos.Z, Mode: true}
	data := &protocol.MapChunkCB{
		X: c.Pos.X * world.ChunkWidth,
		Y: 0,
		Z: c.Pos.Z * world.ChunkWidth,
		SizeX: world.ChunkWidth - 1,
		SizeY: world.ChunkHeight - 1,
		SizeZ: world.ChunkWidth - 1,
		Data:  compressed.Bytes(),
	}
	return pre, data, nil
}

// EncodeUnloadChunk builds the PreChunkCB that tells the client to free a
// chunk it no longer needs.
func EncodeUnloadChunk(pos world.ChunkPos) *protocol.PreChunkCB {
	return &protocol.PreChunkCB{ChunkX: pos.X, ChunkZ: pos.Z, Mode: false}
}
