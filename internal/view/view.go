// Package view computes the set of chunks a player should have loaded
// around them and the diff to apply when that set changes, so the
// session layer knows which chunk packets to send and unload as a
// player crosses chunk boundaries.
package view

import (
	"sort"

	"github.com/OCharnyshevich/beta14core/internal/world"
)

// View is the square of chunks visible to one player, centered on the
// chunk containing their position.
type View struct {
	Center        world.ChunkPos
	ViewDistance  int32
}

// Empty is the view containing no chunks, used as the "old view" the
// first time a player's view is computed after joining.
func Empty() View {
	return View{}
}

// IsEmpty reports whether v contains no chunks.
func (v View) IsEmpty() bool {
	return v.ViewDistance == 0
}

func (v View) minX() int32 { return v.Center.X - v.ViewDistance }
func (v View) maxX() int32 { return v.Center.X + v.ViewDistance }
func (v View) minZ() int32 { return v.Center.Z - v.ViewDistance }
func (v View) maxZ() int32 { return v.Center.Z + v.ViewDistance }

// Contains reports whether pos falls within v's square.
func (v View) Contains(pos world.ChunkPos) bool {
	if v.IsEmpty() {
		return false
	}
	return pos.X >= v.minX() && pos.X <= v.maxX() && pos.Z >= v.minZ() && pos.Z <= v.maxZ()
}

// Chunks returns every chunk position within v, in no particular order.
func (v View) Chunks() []world.ChunkPos {
	if v.IsEmpty() {
		return nil
	}
	out := make([]world.ChunkPos, 0, (2*v.ViewDistance+1)*(2*v.ViewDistance+1))
	for x := v.minX(); x <= v.maxX(); x++ {
		for z := v.minZ(); z <= v.maxZ(); z++ {
			out = append(out, world.ChunkPos{X: x, Z: z})
		}
	}
	return out
}

// difference returns the chunks in v but not in other.
func (v View) difference(other View) []world.ChunkPos {
	var out []world.ChunkPos
	for _, c := range v.Chunks() {
		if !other.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

func distanceSquared(a, b world.ChunkPos) int64 {
	dx := int64(a.X - b.X)
	dz := int64(a.Z - b.Z)
	return dx*dx + dz*dz
}

// Update is the diff between two successive views for one player: the
// chunks to newly load (nearest first, so the client sees its
// surroundings fill in from where it's standing outward) and the
// chunks to unload (nearest the old view's center first).
type Update struct {
	Old, New View
	Load     []world.ChunkPos
	Unload   []world.ChunkPos
}

// NewUpdate computes the diff from oldView to newView, with Load sorted
// by squared distance to the new center ascending and Unload sorted by
// squared distance to the old center ascending.
func NewUpdate(oldView, newView View) Update {
	u := Update{
		Old:    oldView,
		New:    newView,
		Load:   newView.difference(oldView),
		Unload: oldView.difference(newView),
	}
	sort.Slice(u.Load, func(i, j int) bool {
		return distanceSquared(u.Load[i], newView.Center) < distanceSquared(u.Load[j], newView.Center)
	})
	sort.Slice(u.Unload, func(i, j int) bool {
		return distanceSquared(u.Unload[i], oldView.Center) < distanceSquared(u.Unload[j], oldView.Center)
	})
	return u
}
