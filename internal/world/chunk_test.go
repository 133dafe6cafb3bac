package world

import "testing"

func TestNibblePackRoundTrip(t *testing.T) {
	data := make([]byte, NibbleVolume)
	SetNibble(data, 0, 0xA)
	SetNibble(data, 1, 0xB)
	SetNibble(data, 2, 0xF)

	if got := GetNibble(data, 0); got != 0xA {
		t.Errorf("GetNibble(0) = %x, want A", got)
	}
	if got := GetNibble(data, 1); got != 0xB {
		t.Errorf("GetNibble(1) = %x, want B", got)
	}
	if got := GetNibble(data, 2); got != 0xF {
		t.Errorf("GetNibble(2) = %x, want F", got)
	}
	// odd/even pair packed into the same byte must not clobber each other.
	if data[0] != 0xBA {
		t.Errorf("data[0] = %x, want BA", data[0])
	}
}

func TestBlockIndexDistinctForEachAxis(t *testing.T) {
	base := BlockIndex(0, 0, 0)
	if got := BlockIndex(1, 0, 0); got == base {
		t.Error("varying x should change the index")
	}
	if got := BlockIndex(0, 1, 0); got == base {
		t.Error("varying y should change the index")
	}
	if got := BlockIndex(0, 0, 1); got == base {
		t.Error("varying z should change the index")
	}
	if got, want := BlockIndex(15, 127, 15), BlockVolume-1; got != want {
		t.Errorf("BlockIndex(15,127,15) = %d, want %d", got, want)
	}
}

func TestChunkSetAndGetBlock(t *testing.T) {
	c := NewChunk(ChunkPos{X: 2, Z: -3})
	c.SetBlockAt(4, 60, 9, 12)
	c.SetMetadataAt(4, 60, 9, 5)

	if got := c.BlockAt(4, 60, 9); got != 12 {
		t.Errorf("BlockAt = %d, want 12", got)
	}
	if got := c.MetadataAt(4, 60, 9); got != 5 {
		t.Errorf("MetadataAt = %d, want 5", got)
	}
	if got := c.BlockAt(0, 0, 0); got != 0 {
		t.Errorf("untouched block = %d, want 0 (air)", got)
	}
}

func TestRecomputeHeightMapTracksTopmostBlock(t *testing.T) {
	c := NewChunk(ChunkPos{})
	c.SetBlockAt(3, 10, 7, 1)
	c.SetBlockAt(3, 20, 7, 1)
	c.RecomputeHeightMap()

	if got, want := c.HeightMap[3*ChunkWidth+7], byte(21); got != want {
		t.Errorf("HeightMap = %d, want %d", got, want)
	}
	if got := c.HeightMap[0]; got != 0 {
		t.Errorf("empty column HeightMap = %d, want 0", got)
	}
}

func TestChunkHandleRefCounting(t *testing.T) {
	h := NewHandle(NewChunk(ChunkPos{}))
	if got := h.RefCount(); got != 1 {
		t.Fatalf("initial RefCount = %d, want 1", got)
	}

	h.Acquire()
	if got := h.RefCount(); got != 2 {
		t.Fatalf("RefCount after Acquire = %d, want 2", got)
	}

	if h.Release() {
		t.Fatal("Release should not report zero with one ref still held")
	}
	if !h.Release() {
		t.Fatal("Release should report zero once the last ref is released")
	}
}

func TestChunkHandleReadWrite(t *testing.T) {
	h := NewHandle(NewChunk(ChunkPos{}))
	h.Write(func(c *Chunk) { c.SetBlockAt(0, 0, 0, 9) })

	var got byte
	h.Read(func(c *Chunk) { got = c.BlockAt(0, 0, 0) })
	if got != 9 {
		t.Errorf("BlockAt after Write = %d, want 9", got)
	}
}
