// Package region reads and writes the legacy ".mcr" region file format:
// 32x32 chunk columns per file, an 8KB header (a 4KB sector-offset/count
// table followed by a 4KB timestamp table), and each chunk's payload
// stored as a big-endian length, a one-byte compression id, and the
// zlib-compressed NBT that follows.
package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/OCharnyshevich/beta14core/internal/world"
)

const (
	sectorSize    = 4096
	headerSectors = 2 // location table + timestamp table, one sector each
	compressionZlib = 2
)

// Pos identifies a region file by its region-grid coordinates (chunk
// coordinates divided by 32, floor division).
type Pos struct {
	X, Z int32
}

// FileName returns the on-disk name for a region at rx,rz.
func FileName(rx, rz int32) string {
	return fmt.Sprintf("r.%d.%d.mcr", rx, rz)
}

func localIndex(pos world.ChunkPos) int {
	return int(pos.X&31) + int(pos.Z&31)*32
}

// Save writes every chunk in chunks (all of which must lie in the same
// 32x32 region) to dir/r.<rx>.<rz>.mcr, replacing any existing file
// atomically via a temp file and rename.
func Save(dir string, rx, rz int32, chunks map[world.ChunkPos]*world.Chunk) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	type entry struct {
		index      int
		compressed []byte
	}
	entries := make([]entry, 0, len(chunks))

	for pos, chunk := range chunks {
		raw, err := world.EncodeChunkNBT(chunk)
		if err != nil {
			return fmt.Errorf("encode chunk %s: %w", pos, err)
		}
		var cbuf bytes.Buffer
		zw := zlib.NewWriter(&cbuf)
		if _, err := zw.Write(raw); err != nil {
			return fmt.Errorf("compress chunk %s: %w", pos, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zlib writer for %s: %w", pos, err)
		}
		entries = append(entries, entry{index: localIndex(pos), compressed: cbuf.Bytes()})
	}

	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	now := uint32(time.Now().Unix())

	var dataBuf bytes.Buffer
	currentSector := uint32(headerSectors)

	for i := range entries {
		e := &entries[i]

		payloadLen := uint32(len(e.compressed)) + 1 // +1 for the compression-type byte
		totalLen := 4 + payloadLen
		sectorCount := (totalLen + sectorSize - 1) / sectorSize

		off := e.index * 4
		binary.BigEndian.PutUint32(locations[off:off+4], (currentSector<<8)|uint32(sectorCount&0xFF))
		binary.BigEndian.PutUint32(timestamps[off:off+4], now)

		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payloadLen)
		header[4] = compressionZlib
		dataBuf.Write(header[:])
		dataBuf.Write(e.compressed)

		if pad := int(sectorCount)*sectorSize - int(totalLen); pad > 0 {
			dataBuf.Write(make([]byte, pad))
		}

		currentSector += sectorCount
	}

	path := filepath.Join(dir, FileName(rx, rz))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp region file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	if _, err := f.Write(locations); err != nil {
		return fmt.Errorf("write locations: %w", err)
	}
	if _, err := f.Write(timestamps); err != nil {
		return fmt.Errorf("write timestamps: %w", err)
	}
	if _, err := f.Write(dataBuf.Bytes()); err != nil {
		return fmt.Errorf("write chunk data: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close region file: %w", err)
	}
	return os.Rename(tmp, path)
}

// ErrNotPresent is returned by Load when the region file has no entry for
// the requested chunk (a zero location-table slot), as opposed to any I/O
// or format error.
var ErrNotPresent = fmt.Errorf("region: chunk not present")

// Load reads one chunk out of dir/r.<rx>.<rz>.mcr. Callers pass the full
// chunk position; rx/rz are derived from it.
func Load(dir string, pos world.ChunkPos) (*world.Chunk, error) {
	rx, rz := pos.X>>5, pos.Z>>5
	path := filepath.Join(dir, FileName(rx, rz))

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotPresent
		}
		return nil, fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()

	header := make([]byte, sectorSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read location table: %w", err)
	}

	off := localIndex(pos) * 4
	entry := binary.BigEndian.Uint32(header[off : off+4])
	if entry == 0 {
		return nil, ErrNotPresent
	}
	sectorOffset := entry >> 8
	sectorCount := entry & 0xFF
	if sectorCount == 0 {
		return nil, ErrNotPresent
	}

	if _, err := f.Seek(int64(sectorOffset)*sectorSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to chunk data: %w", err)
	}

	payload := make([]byte, sectorCount*sectorSize)
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, fmt.Errorf("read chunk sectors: %w", err)
	}

	length := binary.BigEndian.Uint32(payload[0:4])
	if length < 1 || int(length) > len(payload)-4 {
		return nil, fmt.Errorf("chunk %s: invalid payload length %d", pos, length)
	}
	compression := payload[4]
	compressed := payload[5 : 4+length]

	var raw []byte
	switch compression {
	case compressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("chunk %s: open zlib reader: %w", pos, err)
		}
		defer zr.Close()
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: decompress: %w", pos, err)
		}
	default:
		return nil, fmt.Errorf("chunk %s: unsupported compression id %d", pos, compression)
	}

	chunk, err := world.DecodeChunkNBT(raw)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", pos, err)
	}
	return chunk, nil
}

// Timestamp reads the last-saved unix time for pos out of its region
// file's timestamp table, or 0 if the file or entry doesn't exist.
func Timestamp(dir string, pos world.ChunkPos) (int64, error) {
	rx, rz := pos.X>>5, pos.Z>>5
	path := filepath.Join(dir, FileName(rx, rz))

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(sectorSize, io.SeekStart); err != nil {
		return 0, err
	}
	buf := make([]byte, sectorSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return 0, err
	}
	off := localIndex(pos) * 4
	return int64(binary.BigEndian.Uint32(buf[off : off+4])), nil
}
