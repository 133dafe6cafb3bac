// Package worldgen implements the WorldGenerator contract against the
// legacy 128-block-tall chunk format. Only the flat generator is provided
// here; terrain/mountain/custom generator algorithms are a deliberately
// unimplemented interface boundary, not a stub: a future generator plugs
// in by implementing chunkstore.Generator the same way this one does.
package worldgen

import "github.com/OCharnyshevich/beta14core/internal/world"

// Flat generates a superflat world: bedrock at y=0, dirt through y=2,
// grass at y=3, air above. This is the default generator and the one
// every integration test runs against, since its output is deterministic
// and trivial to assert on.
type Flat struct {
	BedrockID byte
	DirtID    byte
	GrassID   byte
	GroundLevel int
}

// NewFlat returns a Flat generator with the classic bedrock/dirt/grass
// layering, ground level at y=4 (bedrock, 2 dirt layers, grass at y=3).
func NewFlat() *Flat {
	return &Flat{BedrockID: 7, DirtID: 3, GrassID: 2, GroundLevel: 4}
}

// Generate implements chunkstore.Generator.
func (g *Flat) Generate(pos world.ChunkPos) (*world.Chunk, error) {
	c := world.NewChunk(pos)
	c.TerrainPopulated = true

	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkWidth; z++ {
			c.SetBlockAt(x, 0, z, g.BedrockID)
			for y := 1; y < g.GroundLevel-1; y++ {
				c.SetBlockAt(x, y, z, g.DirtID)
			}
			if g.GroundLevel-1 > 0 {
				c.SetBlockAt(x, g.GroundLevel-1, z, g.GrassID)
			}
			for y := g.GroundLevel; y < world.ChunkHeight; y++ {
				world.SetNibble(c.SkyLight[:], world.BlockIndex(x, y, z), 15)
			}
		}
	}
	c.RecomputeHeightMap()
	return c, nil
}
