package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Compound is a parsed NBT compound tag: name to decoded value. Values are
// one of byte, int16, int32, int64, float32, float64, []byte, string,
// *List, Compound, or []int32, matching the Tag* constants.
type Compound map[string]any

// List is a parsed NBT list tag: every element shares ElemType.
type List struct {
	ElemType byte
	Items    []any
}

// Reader parses big-endian NBT binary data read from an io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader creates a new NBT Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) readByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) readUint16() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (r *Reader) readInt32() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func (r *Reader) readInt64() (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func (r *Reader) readString() (string, error) {
	n, err := r.readUint16()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadRoot reads the single top-level named compound tag a chunk/level/
// player file starts with, returning its name and contents.
func (r *Reader) ReadRoot() (name string, root Compound, err error) {
	tagType, err := r.readByte()
	if err != nil {
		return "", nil, err
	}
	if tagType != TagCompound {
		return "", nil, fmt.Errorf("nbt: root tag is type %d, want compound", tagType)
	}
	name, err = r.readString()
	if err != nil {
		return "", nil, fmt.Errorf("nbt: read root name: %w", err)
	}
	root, err = r.readCompoundBody()
	if err != nil {
		return "", nil, err
	}
	return name, root, nil
}

func (r *Reader) readCompoundBody() (Compound, error) {
	out := Compound{}
	for {
		tagType, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("nbt: read tag type: %w", err)
		}
		if tagType == TagEnd {
			return out, nil
		}
		name, err := r.readString()
		if err != nil {
			return nil, fmt.Errorf("nbt: read tag name: %w", err)
		}
		val, err := r.readValue(tagType)
		if err != nil {
			return nil, fmt.Errorf("nbt: read tag %q: %w", name, err)
		}
		out[name] = val
	}
}

func (r *Reader) readValue(tagType byte) (any, error) {
	switch tagType {
	case TagByte:
		return r.readByte()
	case TagShort:
		v, err := r.readUint16()
		return int16(v), err
	case TagInt:
		return r.readInt32()
	case TagLong:
		return r.readInt64()
	case TagFloat:
		v, err := r.readInt32()
		return math.Float32frombits(uint32(v)), err
	case TagDouble:
		v, err := r.readInt64()
		return math.Float64frombits(uint64(v)), err
	case TagByteArray:
		n, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r.r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case TagString:
		return r.readString()
	case TagList:
		elemType, err := r.readByte()
		if err != nil {
			return nil, err
		}
		count, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, count)
		for i := int32(0); i < count; i++ {
			v, err := r.readValue(elemType)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return &List{ElemType: elemType, Items: items}, nil
	case TagCompound:
		return r.readCompoundBody()
	case TagIntArray:
		n, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			out[i], err = r.readInt32()
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("nbt: unknown tag type %d", tagType)
	}
}
