package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

// ErrShortBuffer is returned by decode helpers when the supplied buffer does
// not yet contain a full value. Callers must not consume any bytes when this
// is returned.
var ErrShortBuffer = errors.New("protocol: need more bytes")

// cursor reads big-endian primitives out of a byte slice, tracking how many
// bytes have been consumed so a short buffer can be detected without
// mutating caller-visible state until the whole packet decodes cleanly.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) need(n int) error {
	if len(c.buf)-c.pos < n {
		return ErrShortBuffer
	}
	return nil
}

func (c *cursor) u8() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) i8() (int8, error) {
	v, err := c.u8()
	return int8(v), err
}

func (c *cursor) bool() (bool, error) {
	v, err := c.u8()
	return v != 0, err
}

func (c *cursor) u16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) i16() (int16, error) {
	v, err := c.u16()
	return int16(v), err
}

func (c *cursor) i32() (int32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(c.buf[c.pos:]))
	c.pos += 4
	return v, nil
}

func (c *cursor) i64() (int64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(c.buf[c.pos:]))
	c.pos += 8
	return v, nil
}

func (c *cursor) f32() (float32, error) {
	v, err := c.i32()
	return math.Float32frombits(uint32(v)), err
}

func (c *cursor) f64() (float64, error) {
	v, err := c.i64()
	return math.Float64frombits(uint64(v)), err
}

// string16 reads a protocol-v14 string: an i16 count of UTF-16 code units
// followed by the units themselves, big-endian.
func (c *cursor) string16() (string, error) {
	n, err := c.i16()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("protocol: negative string length %d", n)
	}
	byteLen := int(n) * 2
	if err := c.need(byteLen); err != nil {
		return "", err
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(c.buf[c.pos+i*2:])
	}
	c.pos += byteLen
	return string(utf16.Decode(units)), nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, c.buf[c.pos:c.pos+n])
	c.pos += n
	return v, nil
}

// byteArray16 reads an i16-length-prefixed raw byte array (chunk payloads,
// metadata blobs, slot NBT).
func (c *cursor) byteArray16() ([]byte, error) {
	n, err := c.i16()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	return c.bytes(int(n))
}

// --- encoding side ---

// writer accumulates a self-delimited byte sequence for one packet.
type writer struct {
	buf []byte
}

func (w *writer) u8(v byte)   { w.buf = append(w.buf, v) }
func (w *writer) i8(v int8)   { w.u8(byte(v)) }
func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) i16(v int16) { w.u16(uint16(v)) }

func (w *writer) i32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) i64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) f32(v float32) { w.i32(int32(math.Float32bits(v))) }
func (w *writer) f64(v float64) { w.i64(int64(math.Float64bits(v))) }

func (w *writer) string16(s string) {
	units := utf16.Encode([]rune(s))
	w.i16(int16(len(units)))
	for _, u := range units {
		w.u16(u)
	}
}

func (w *writer) byteArray16(data []byte) {
	w.i16(int16(len(data)))
	w.buf = append(w.buf, data...)
}

func (w *writer) raw(data []byte) { w.buf = append(w.buf, data...) }

// AbsInt scales a floating-point coordinate by 32 and rounds, producing the
// fixed-point "absolute-int" wire representation used for entity positions.
func AbsInt(v float64) int32 {
	return int32(math.Round(v * 32))
}

// FromAbsInt reverses AbsInt.
func FromAbsInt(v int32) float64 {
	return float64(v) / 32
}

// Angle packs a float degree value into a single byte, 1/256 of a full turn,
// the wire representation for entity look fields.
func Angle(degrees float32) byte {
	normalized := math.Mod(float64(degrees), 360)
	if normalized < 0 {
		normalized += 360
	}
	return byte(int(normalized/360*256) & 0xFF)
}

// FromAngle reverses Angle.
func FromAngle(b byte) float32 {
	return float32(b) * 360 / 256
}
