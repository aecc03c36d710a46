package types

import "encoding/binary"

const (
	// HeaderSize is the fixed {numKeys, keysOffset} prefix of every packet.
	HeaderSize = 8
	// EntrySize is one directory triple: keyHash, offset, length.
	EntrySize = 12
)

// Entry locates one field inside a packet payload.
type Entry struct {
	Hash   uint32
	Offset uint32
	Length uint32
}

// End returns the offset one past the last byte of the field.
func (e Entry) End() uint64 {
	return uint64(e.Offset) + uint64(e.Length)
}

// PutHeader writes the packet header into buf[0:8].
func PutHeader(buf []byte, numKeys, keysOffset uint32) {
	binary.LittleEndian.PutUint32(buf[0:], numKeys)
	binary.LittleEndian.PutUint32(buf[4:], keysOffset)
}

// DecodeHeader reads numKeys and keysOffset from buf[0:8].
func DecodeHeader(buf []byte) (numKeys, keysOffset uint32) {
	return binary.LittleEndian.Uint32(buf[0:]), binary.LittleEndian.Uint32(buf[4:])
}

// PutEntry writes e at buf[pos:] and returns the position after it.
func PutEntry(buf []byte, pos int, e Entry) int {
	binary.LittleEndian.PutUint32(buf[pos:], e.Hash)
	binary.LittleEndian.PutUint32(buf[pos+4:], e.Offset)
	binary.LittleEndian.PutUint32(buf[pos+8:], e.Length)
	return pos + EntrySize
}

// DecodeEntry reads the triple stored at buf[pos:].
func DecodeEntry(buf []byte, pos int) Entry {
	return Entry{
		Hash:   binary.LittleEndian.Uint32(buf[pos:]),
		Offset: binary.LittleEndian.Uint32(buf[pos+4:]),
		Length: binary.LittleEndian.Uint32(buf[pos+8:]),
	}
}

// ExpectedSize is the total packet length a header advertises.
func ExpectedSize(numKeys, keysOffset uint32) uint64 {
	return uint64(keysOffset) + uint64(numKeys)*EntrySize
}
