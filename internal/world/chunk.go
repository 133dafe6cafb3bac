// Package world holds the chunk data model, its NBT encoding, and the
// region-file storage format for a single dimension. The legacy layout is
// a fixed 128-block-tall column (8 16-block sections stacked into one
// array) rather than the modern per-section storage.
package world

import (
	"fmt"
	"sync"
	"time"
)

const (
	// ChunkWidth is the block width of a chunk column along X and Z.
	ChunkWidth = 16
	// ChunkHeight is the fixed world height: 8 stacked 16-block sections.
	ChunkHeight = 128
	// BlockVolume is the number of blocks in one column (16*128*16).
	BlockVolume = ChunkWidth * ChunkHeight * ChunkWidth
	// NibbleVolume is the byte length of a packed nibble array over the
	// same volume (two blocks per byte).
	NibbleVolume = BlockVolume / 2
)

// ChunkPos identifies a chunk column by its chunk-grid coordinates (block
// coordinates divided by 16, floor division).
type ChunkPos struct {
	X, Z int32
}

func (p ChunkPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// BlockIndex returns the offset into a Chunk's flat block/nibble arrays for
// local coordinates in [0,16)x[0,128)x[0,16). The layout is height-major:
// consecutive bytes walk up a single (x,z) column before moving to the
// next z, matching the legacy on-disk array order.
func BlockIndex(x, y, z int) int {
	return y + z*ChunkHeight + x*ChunkHeight*ChunkWidth
}

// GetNibble reads one 4-bit value out of a packed nibble array.
func GetNibble(data []byte, idx int) byte {
	b := data[idx/2]
	if idx%2 == 0 {
		return b & 0x0F
	}
	return (b >> 4) & 0x0F
}

// SetNibble writes one 4-bit value into a packed nibble array.
func SetNibble(data []byte, idx int, v byte) {
	i := idx / 2
	if idx%2 == 0 {
		data[i] = (data[i] & 0xF0) | (v & 0x0F)
	} else {
		data[i] = (data[i] & 0x0F) | (v << 4)
	}
}

// TileEntity is a block entity's NBT payload, keyed by its block position
// and NBT tag id (e.g. "Chest", "Sign", "Furnace").
type TileEntity struct {
	X, Y, Z int32
	ID      string
	Data    map[string]any
}

// Entity is a serialized non-player entity living in a chunk's save data
// (dropped items, mobs). Player entities are never part of chunk data.
type Entity struct {
	ID   string
	Data map[string]any
}

// Chunk is one loaded 16x128x16 column. All block-array access must hold
// the owning ChunkHandle's lock; Chunk itself has no internal locking.
type Chunk struct {
	Pos ChunkPos

	Blocks   [BlockVolume]byte
	Metadata [NibbleVolume]byte
	BlockLight [NibbleVolume]byte
	SkyLight   [NibbleVolume]byte
	HeightMap  [ChunkWidth * ChunkWidth]byte

	TileEntities []TileEntity
	Entities     []Entity

	TerrainPopulated bool
	LastUpdate       int64
}

// NewChunk allocates a zeroed chunk at pos (air blocks, zero light).
func NewChunk(pos ChunkPos) *Chunk {
	return &Chunk{Pos: pos, LastUpdate: time.Now().Unix()}
}

// BlockAt returns the block id at local coordinates.
func (c *Chunk) BlockAt(x, y, z int) byte {
	return c.Blocks[BlockIndex(x, y, z)]
}

// SetBlockAt sets the block id at local coordinates.
func (c *Chunk) SetBlockAt(x, y, z int, id byte) {
	c.Blocks[BlockIndex(x, y, z)] = id
}

// MetadataAt returns the block metadata nibble at local coordinates.
func (c *Chunk) MetadataAt(x, y, z int) byte {
	return GetNibble(c.Metadata[:], BlockIndex(x, y, z))
}

// SetMetadataAt sets the block metadata nibble at local coordinates.
func (c *Chunk) SetMetadataAt(x, y, z int, v byte) {
	SetNibble(c.Metadata[:], BlockIndex(x, y, z), v)
}

// RecomputeHeightMap scans each column top-down and records the y just
// above its topmost non-air block (the lowest y with only air from there
// up), or 0 for an all-air column.
func (c *Chunk) RecomputeHeightMap() {
	for x := 0; x < ChunkWidth; x++ {
		for z := 0; z < ChunkWidth; z++ {
			h := byte(0)
			for y := ChunkHeight - 1; y >= 0; y-- {
				if c.BlockAt(x, y, z) != 0 {
					h = byte(y + 1)
					break
				}
			}
			c.HeightMap[x*ChunkWidth+z] = h
		}
	}
}

// ChunkHandle is a reference-counted, independently lockable chunk. The
// chunk store hands these out; callers must call Release when done so the
// unused-chunk cache can start its eviction timer.
type ChunkHandle struct {
	mu    sync.RWMutex
	chunk *Chunk

	refs int32
	refMu sync.Mutex
}

// NewHandle wraps chunk in a fresh handle with one reference held.
func NewHandle(chunk *Chunk) *ChunkHandle {
	return &ChunkHandle{chunk: chunk, refs: 1}
}

// Acquire increments the reference count and returns the handle, for
// callers that received it from a lookup rather than a fresh load.
func (h *ChunkHandle) Acquire() *ChunkHandle {
	h.refMu.Lock()
	h.refs++
	h.refMu.Unlock()
	return h
}

// Release decrements the reference count, returning true if it reached
// zero (the caller is then responsible for handing the handle to the
// unused-chunk cache, not for freeing it directly).
func (h *ChunkHandle) Release() bool {
	h.refMu.Lock()
	defer h.refMu.Unlock()
	h.refs--
	return h.refs <= 0
}

// RefCount reports the current reference count, for tests and metrics.
func (h *ChunkHandle) RefCount() int32 {
	h.refMu.Lock()
	defer h.refMu.Unlock()
	return h.refs
}

// Read runs fn with the chunk locked for reading.
func (h *ChunkHandle) Read(fn func(*Chunk)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.chunk)
}

// Write runs fn with the chunk locked for writing.
func (h *ChunkHandle) Write(fn func(*Chunk)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.chunk)
}
