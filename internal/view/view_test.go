package view

import (
	"testing"

	"github.com/OCharnyshevich/beta14core/internal/world"
)

func TestViewContains(t *testing.T) {
	v := View{Center: world.ChunkPos{X: 0, Z: 0}, ViewDistance: 2}
	if !v.Contains(world.ChunkPos{X: 2, Z: -2}) {
		t.Error("expected (2,-2) to be within view distance 2")
	}
	if v.Contains(world.ChunkPos{X: 3, Z: 0}) {
		t.Error("expected (3,0) to be outside view distance 2")
	}
	if Empty().Contains(world.ChunkPos{}) {
		t.Error("the empty view should contain nothing")
	}
}

func TestViewChunksCount(t *testing.T) {
	v := View{Center: world.ChunkPos{}, ViewDistance: 1}
	chunks := v.Chunks()
	if len(chunks) != 9 {
		t.Fatalf("Chunks() = %d entries, want 9", len(chunks))
	}
}

func TestNewUpdateFromEmpty(t *testing.T) {
	newView := View{Center: world.ChunkPos{X: 0, Z: 0}, ViewDistance: 1}
	u := NewUpdate(Empty(), newView)
	if len(u.Unload) != 0 {
		t.Errorf("Unload = %v, want none", u.Unload)
	}
	if len(u.Load) != 9 {
		t.Fatalf("Load = %d entries, want 9", len(u.Load))
	}
	// The center chunk should be first: it has the smallest squared
	// distance to the new center.
	if u.Load[0] != newView.Center {
		t.Errorf("Load[0] = %v, want center %v", u.Load[0], newView.Center)
	}
}

func TestNewUpdateOnShift(t *testing.T) {
	oldView := View{Center: world.ChunkPos{X: 0, Z: 0}, ViewDistance: 1}
	newView := View{Center: world.ChunkPos{X: 1, Z: 0}, ViewDistance: 1}
	u := NewUpdate(oldView, newView)

	for _, pos := range u.Load {
		if oldView.Contains(pos) {
			t.Errorf("Load contains %v, which was already in the old view", pos)
		}
	}
	for _, pos := range u.Unload {
		if newView.Contains(pos) {
			t.Errorf("Unload contains %v, which is still in the new view", pos)
		}
	}
	if len(u.Load) == 0 || len(u.Unload) == 0 {
		t.Fatal("a one-chunk shift should both load and unload chunks")
	}
}

func TestNewUpdateSameViewIsEmpty(t *testing.T) {
	v := View{Center: world.ChunkPos{X: 5, Z: 5}, ViewDistance: 2}
	u := NewUpdate(v, v)
	if len(u.Load) != 0 || len(u.Unload) != 0 {
		t.Errorf("identical views should produce no diff, got %+v", u)
	}
}
