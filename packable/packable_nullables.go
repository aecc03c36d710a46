package packable

import (
	"encoding/binary"

	"github.com/quickwritereader/packetkv/packet"
)

// Nullable is a value that may be absent. Pack and PackInto skip null
// values, so a null field is simply missing from the packet.
type Nullable interface {
	packet.Packable
	IsNull() bool
}

// PackableNullable wraps a pointer to a fixed-width scalar.
type PackableNullable[T packet.Scalar] struct{ V *T }

func PackNullable[T packet.Scalar](v *T) PackableNullable[T] {
	return PackableNullable[T]{V: v}
}

func PackNullableInt8(v *int8) PackableNullable[int8]          { return PackNullable(v) }
func PackNullableUint8(v *uint8) PackableNullable[uint8]       { return PackNullable(v) }
func PackNullableInt16(v *int16) PackableNullable[int16]       { return PackNullable(v) }
func PackNullableUint16(v *uint16) PackableNullable[uint16]    { return PackNullable(v) }
func PackNullableInt32(v *int32) PackableNullable[int32]       { return PackNullable(v) }
func PackNullableUint32(v *uint32) PackableNullable[uint32]    { return PackNullable(v) }
func PackNullableInt64(v *int64) PackableNullable[int64]       { return PackNullable(v) }
func PackNullableUint64(v *uint64) PackableNullable[uint64]    { return PackNullable(v) }
func PackNullableFloat32(v *float32) PackableNullable[float32] { return PackNullable(v) }
func PackNullableFloat64(v *float64) PackableNullable[float64] { return PackNullable(v) }
func PackNullableBool(v *bool) PackableNullable[bool]          { return PackNullable(v) }

func (p PackableNullable[T]) IsNull() bool { return p.V == nil }

func (p PackableNullable[T]) ValueSize() int {
	if p.V == nil {
		return 0
	}
	return binary.Size(*p.V)
}

func (p PackableNullable[T]) Write(buf []byte, pos int) int {
	if p.V == nil {
		return pos
	}
	n, _ := binary.Encode(buf[pos:], binary.LittleEndian, *p.V)
	return pos + n
}

// PackNullableString packs nil as an absent field.
type PackNullableString struct{ V *string }

func (p PackNullableString) IsNull() bool { return p.V == nil }

func (p PackNullableString) ValueSize() int {
	if p.V == nil {
		return 0
	}
	return len(*p.V)
}

func (p PackNullableString) Write(buf []byte, pos int) int {
	if p.V == nil {
		return pos
	}
	return pos + copy(buf[pos:], *p.V)
}
