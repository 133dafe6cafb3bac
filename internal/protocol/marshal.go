package protocol

import (
	"fmt"
	"reflect"
)

const tagName = "mc"

// encodeBody appends p's tagged fields, in declaration order, onto w. This
// mirrors the teacher's reflect-over-struct-tags Marshal, retargeted at the
// protocol-v14 primitive set (string16, absint, angle) instead of varints.
func encodeBody(w *writer, p Packet) error {
	v := reflect.ValueOf(p)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("protocol: encode expected struct, got %s", v.Kind())
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}
		if err := writeField(w, tag, v.Field(i)); err != nil {
			return fmt.Errorf("encode field %s: %w", field.Name, err)
		}
	}
	return nil
}

// decodeBody fills p's tagged fields from c, in declaration order. Any
// ErrShortBuffer bubbles straight up without touching p further; the caller
// (Decode) must discard the partial struct and retry once more bytes exist.
func decodeBody(c *cursor, p Packet) error {
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("protocol: decode expected non-nil pointer, got %T", p)
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}
		if err := readField(c, tag, v.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

func writeField(w *writer, tag string, fv reflect.Value) error {
	switch tag {
	case "u8":
		w.u8(byte(fv.Uint()))
	case "i8":
		w.i8(int8(fv.Int()))
	case "bool":
		w.bool(fv.Bool())
	case "i16":
		w.i16(int16(fv.Int()))
	case "u16":
		w.u16(uint16(fv.Uint()))
	case "i32":
		w.i32(int32(fv.Int()))
	case "i64":
		w.i64(fv.Int())
	case "f32":
		w.f32(float32(fv.Float()))
	case "f64":
		w.f64(fv.Float())
	case "string16":
		w.string16(fv.String())
	case "bytearray16":
		w.byteArray16(fv.Bytes())
	case "absint":
		w.i32(AbsInt(fv.Float()))
	case "angle":
		w.u8(Angle(float32(fv.Float())))
	case "rest":
		w.raw(fv.Bytes())
	default:
		return fmt.Errorf("unknown field tag %q", tag)
	}
	return nil
}

func readField(c *cursor, tag string, fv reflect.Value) error {
	switch tag {
	case "u8":
		v, err := c.u8()
		if err != nil {
			return err
		}
		fv.SetUint(uint64(v))
	case "i8":
		v, err := c.i8()
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case "bool":
		v, err := c.bool()
		if err != nil {
			return err
		}
		fv.SetBool(v)
	case "i16":
		v, err := c.i16()
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case "u16":
		v, err := c.u16()
		if err != nil {
			return err
		}
		fv.SetUint(uint64(v))
	case "i32":
		v, err := c.i32()
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case "i64":
		v, err := c.i64()
		if err != nil {
			return err
		}
		fv.SetInt(v)
	case "f32":
		v, err := c.f32()
		if err != nil {
			return err
		}
		fv.SetFloat(float64(v))
	case "f64":
		v, err := c.f64()
		if err != nil {
			return err
		}
		fv.SetFloat(v)
	case "string16":
		v, err := c.string16()
		if err != nil {
			return err
		}
		fv.SetString(v)
	case "bytearray16":
		v, err := c.byteArray16()
		if err != nil {
			return err
		}
		fv.SetBytes(v)
	case "absint":
		v, err := c.i32()
		if err != nil {
			return err
		}
		fv.SetFloat(FromAbsInt(v))
	case "angle":
		v, err := c.u8()
		if err != nil {
			return err
		}
		fv.SetFloat(float64(FromAngle(v)))
	case "rest":
		v := make([]byte, len(c.buf)-c.pos)
		copy(v, c.buf[c.pos:])
		c.pos = len(c.buf)
		fv.SetBytes(v)
	default:
		return fmt.Errorf("unknown field tag %q", tag)
	}
	return nil
}

// Encode serializes p as a full wire packet: id byte followed by its tagged
// fields.
func Encode(p Packet) ([]byte, error) {
	w := &writer{}
	w.u8(p.PacketID())
	if err := encodeBody(w, p); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// Decode reads one packet from buf under state, returning the packet and the
// number of bytes consumed. If buf does not yet hold a full packet, Decode
// returns (nil, 0, ErrShortBuffer) and leaves buf untouched from the caller's
// perspective — no partial read is observable.
func Decode(buf []byte, state State) (Packet, int, error) {
	if len(buf) < 1 {
		return nil, 0, ErrShortBuffer
	}
	id := buf[0]
	f, err := lookup(state, id)
	if err != nil {
		return nil, 0, err
	}
	p := f()
	c := newCursor(buf[1:])
	if err := decodeBody(c, p); err != nil {
		return nil, 0, err
	}
	return p, 1 + c.pos, nil
}
