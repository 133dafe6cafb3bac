package nbt

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.BeginCompound("Level")
	w.WriteInt("xPos", 5)
	w.WriteInt("zPos", -3)
	w.WriteLong("LastUpdate", 123456789)
	w.WriteByteArray("Blocks", []byte{1, 2, 3, 4})
	w.WriteString("Generator", "flat")
	w.BeginList("Entities", TagCompound, 0)
	w.BeginCompound("TileEntities_unused")
	w.WriteTagByte("x", 7)
	w.EndCompound()
	w.EndCompound()
	if err := w.Err(); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	name, root, err := r.ReadRoot()
	if err != nil {
		t.Fatalf("ReadRoot: %v", err)
	}
	if name != "Level" {
		t.Errorf("name = %q, want Level", name)
	}
	if root["xPos"].(int32) != 5 {
		t.Errorf("xPos = %v", root["xPos"])
	}
	if root["zPos"].(int32) != -3 {
		t.Errorf("zPos = %v", root["zPos"])
	}
	if root["LastUpdate"].(int64) != 123456789 {
		t.Errorf("LastUpdate = %v", root["LastUpdate"])
	}
	if !bytes.Equal(root["Blocks"].([]byte), []byte{1, 2, 3, 4}) {
		t.Errorf("Blocks = %v", root["Blocks"])
	}
	if root["Generator"].(string) != "flat" {
		t.Errorf("Generator = %v", root["Generator"])
	}
	list, ok := root["Entities"].(*List)
	if !ok || list.ElemType != TagCompound || len(list.Items) != 0 {
		t.Errorf("Entities = %#v", root["Entities"])
	}
}

func TestWriteReadIntArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.BeginCompound("")
	w.WriteIntArray("HeightMap", []int32{1, 2, 3, 4, 5})
	w.EndCompound()
	if err := w.Err(); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	_, root, err := r.ReadRoot()
	if err != nil {
		t.Fatalf("ReadRoot: %v", err)
	}
	got, ok := root["HeightMap"].([]int32)
	if !ok {
		t.Fatalf("HeightMap type = %T", root["HeightMap"])
	}
	want := []int32{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("HeightMap[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
