package packable

import (
	"encoding/binary"
	"math"
)

// PackInt8 implements the packet.Packable interface for int8.
type PackInt8 int8

func (p PackInt8) ValueSize() int { return 1 }
func (p PackInt8) Write(buf []byte, pos int) int {
	buf[pos] = byte(p)
	return pos + 1
}

// PackUint8 implements the packet.Packable interface for uint8.
type PackUint8 uint8

func (p PackUint8) ValueSize() int { return 1 }
func (p PackUint8) Write(buf []byte, pos int) int {
	buf[pos] = byte(p)
	return pos + 1
}

// PackInt16 implements the packet.Packable interface for int16.
type PackInt16 int16

func (p PackInt16) ValueSize() int { return 2 }
func (p PackInt16) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint16(buf[pos:], uint16(p))
	return pos + 2
}

// PackUint16 implements the packet.Packable interface for uint16.
type PackUint16 uint16

func (p PackUint16) ValueSize() int { return 2 }
func (p PackUint16) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint16(buf[pos:], uint16(p))
	return pos + 2
}

// PackInt32 implements the packet.Packable interface for int32.
type PackInt32 int32

func (p PackInt32) ValueSize() int { return 4 }
func (p PackInt32) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint32(buf[pos:], uint32(p))
	return pos + 4
}

// PackUint32 implements the packet.Packable interface for uint32.
type PackUint32 uint32

func (p PackUint32) ValueSize() int { return 4 }
func (p PackUint32) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint32(buf[pos:], uint32(p))
	return pos + 4
}

// PackInt64 implements the packet.Packable interface for int64.
type PackInt64 int64

func (p PackInt64) ValueSize() int { return 8 }
func (p PackInt64) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint64(buf[pos:], uint64(p))
	return pos + 8
}

// PackUint64 implements the packet.Packable interface for uint64.
type PackUint64 uint64

func (p PackUint64) ValueSize() int { return 8 }
func (p PackUint64) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint64(buf[pos:], uint64(p))
	return pos + 8
}

// PackFloat32 implements the packet.Packable interface for float32.
type PackFloat32 float32

func (p PackFloat32) ValueSize() int { return 4 }
func (p PackFloat32) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint32(buf[pos:], math.Float32bits(float32(p)))
	return pos + 4
}

// PackFloat64 implements the packet.Packable interface for float64.
type PackFloat64 float64

func (p PackFloat64) ValueSize() int { return 8 }
func (p PackFloat64) Write(buf []byte, pos int) int {
	binary.LittleEndian.PutUint64(buf[pos:], math.Float64bits(float64(p)))
	return pos + 8
}

// PackBool implements the packet.Packable interface for bool.
type PackBool bool

func (p PackBool) ValueSize() int { return 1 }
func (p PackBool) Write(buf []byte, pos int) int {
	if p {
		buf[pos] = 1
	} else {
		buf[pos] = 0
	}
	return pos + 1
}

// PackString implements the packet.Packable interface for string.
type PackString string

func (p PackString) ValueSize() int { return len(p) }
func (p PackString) Write(buf []byte, pos int) int {
	return pos + copy(buf[pos:], p)
}

// PackByteArrayRef implements the packet.Packable interface for []byte.
// Boxing a slice header in an interface allocates, so the slice is held by
// reference.
type PackByteArrayRef struct {
	ref *[]byte
}

func (p PackByteArrayRef) ValueSize() int { return len(*p.ref) }
func (p PackByteArrayRef) Write(buf []byte, pos int) int {
	return pos + copy(buf[pos:], *p.ref)
}

func PackByteArray(b []byte) PackByteArrayRef {
	return PackByteArrayRef{ref: &b}
}
