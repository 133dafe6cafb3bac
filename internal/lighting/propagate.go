package lighting

import "github.com/OCharnyshevich/beta14core/internal/world"

type litNode struct {
	x, y, z int
	level   byte
}

// RecomputeSkylight rebuilds c's entire skylight nibble array from scratch,
// seeded at 15 from the first non-opaque block below open sky in each
// column and spread by a breadth-first walk that loses one level per step
// and never crosses an opaque block. This only considers blocks inside c:
// a chunk's border columns don't pick up skylight contributed by a
// neighboring chunk's own open sky, a simplification worth revisiting if
// chunk-edge lighting seams become visible (see DESIGN.md).
func RecomputeSkylight(c *world.Chunk) {
	for i := range c.SkyLight {
		c.SkyLight[i] = 0
	}

	var queue []litNode
	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkWidth; z++ {
			for y := world.ChunkHeight - 1; y >= 0; y-- {
				if IsOpaque(c.BlockAt(x, y, z)) {
					break
				}
				world.SetNibble(c.SkyLight[:], world.BlockIndex(x, y, z), FullBright)
				queue = append(queue, litNode{x, y, z, FullBright})
			}
		}
	}
	spread(c, c.SkyLight[:], queue)
}

// RecomputeBlockLight rebuilds c's entire block-light nibble array from
// scratch, seeded from every light-emitting block found in c and spread
// the same way as RecomputeSkylight. Subject to the same chunk-local
// scoping caveat.
func RecomputeBlockLight(c *world.Chunk) {
	for i := range c.BlockLight {
		c.BlockLight[i] = 0
	}

	var queue []litNode
	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkWidth; z++ {
			for y := 0; y < world.ChunkHeight; y++ {
				level := Emission(c.BlockAt(x, y, z))
				if level == 0 {
					continue
				}
				world.SetNibble(c.BlockLight[:], world.BlockIndex(x, y, z), level)
				queue = append(queue, litNode{x, y, z, level})
			}
		}
	}
	spread(c, c.BlockLight[:], queue)
}

func spread(c *world.Chunk, light []byte, queue []litNode) {
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.level <= 1 {
			continue
		}
		next := n.level - 1
		for _, d := range [...][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
			nx, ny, nz := n.x+d[0], n.y+d[1], n.z+d[2]
			if nx < 0 || nx >= world.ChunkWidth || nz < 0 || nz >= world.ChunkWidth || ny < 0 || ny >= world.ChunkHeight {
				continue
			}
			if IsOpaque(c.BlockAt(nx, ny, nz)) {
				continue
			}
			idx := world.BlockIndex(nx, ny, nz)
			if world.GetNibble(light, idx) >= next {
				continue
			}
			world.SetNibble(light, idx, next)
			queue = append(queue, litNode{nx, ny, nz, next})
		}
	}
}
