package lighting

import (
	"testing"

	"github.com/OCharnyshevich/beta14core/internal/world"
)

func TestRecomputeSkylightOpenColumnIsFullBright(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{})
	// Bedrock floor at y=0, air above — an open column.
	c.SetBlockAt(5, 0, 5, 7)
	RecomputeSkylight(c)

	if got := world.GetNibble(c.SkyLight[:], world.BlockIndex(5, 127, 5)); got != FullBright {
		t.Errorf("top of open column = %d, want %d", got, FullBright)
	}
	if got := world.GetNibble(c.SkyLight[:], world.BlockIndex(5, 1, 5)); got != FullBright {
		t.Errorf("bottom of open column = %d, want %d", got, FullBright)
	}
	if got := world.GetNibble(c.SkyLight[:], world.BlockIndex(5, 0, 5)); got != 0 {
		t.Errorf("inside the bedrock block = %d, want 0", got)
	}
}

func TestRecomputeSkylightBlockedUnderRoof(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{})
	for y := 0; y < 60; y++ {
		c.SetBlockAt(8, y, 8, 7) // solid column
	}
	c.SetBlockAt(8, 60, 8, 1) // stone roof
	RecomputeSkylight(c)

	if got := world.GetNibble(c.SkyLight[:], world.BlockIndex(8, 59, 8)); got != 0 {
		t.Errorf("under the roof = %d, want 0 (no open-sky seed below a solid column)", got)
	}
}

func TestRecomputeBlockLightSpreadsFromTorch(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{})
	c.SetBlockAt(8, 64, 8, 50) // torch, emits 14
	RecomputeBlockLight(c)

	if got := world.GetNibble(c.BlockLight[:], world.BlockIndex(8, 64, 8)); got != 14 {
		t.Errorf("torch block itself = %d, want 14", got)
	}
	if got := world.GetNibble(c.BlockLight[:], world.BlockIndex(9, 64, 8)); got != 13 {
		t.Errorf("one block away = %d, want 13", got)
	}
	if got := world.GetNibble(c.BlockLight[:], world.BlockIndex(0, 64, 0)); got != 0 {
		t.Errorf("far corner = %d, want 0", got)
	}
}

func TestRecomputeBlockLightStopsAtOpaqueBlock(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{})
	c.SetBlockAt(8, 64, 8, 89) // glowstone, emits 15
	c.SetBlockAt(9, 64, 8, 1)  // stone wall
	RecomputeBlockLight(c)

	if got := world.GetNibble(c.BlockLight[:], world.BlockIndex(10, 64, 8)); got != 0 {
		t.Errorf("behind the wall = %d, want 0", got)
	}
}
