package packet

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/quickwritereader/packetkv/types"
	"github.com/quickwritereader/packetkv/utils"
)

// Scalar lists the fixed-width values PutValue and GetValue encode.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// Allocate reserves length bytes for key at the tail of the payload and
// returns them for the caller to fill. A key whose hash is already present
// replaces the earlier entry; the old bytes stay behind as dead payload.
func (p *Packet) Allocate(key string, length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("packet: allocate %q: negative length %d", key, length)
	}
	if err := p.ensureWritable("allocate"); err != nil {
		return nil, err
	}
	p.unfinalize()

	total := uint64(p.size) + uint64(length) + uint64(len(p.dir)+1)*types.EntrySize
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("packet: allocate %q: %d bytes exceeds wire limit: %w", key, total, ErrCapacity)
	}
	if err := p.reserve(length); err != nil {
		return nil, err
	}

	h := types.KeyHash(key)
	offset := p.size
	p.dir[h] = types.Entry{Hash: h, Offset: uint32(offset), Length: uint32(length)}
	p.size += length
	p.phase = types.PhaseBuilding
	types.PutHeader(p.store, uint32(len(p.dir)), 0)
	return p.store[offset:p.size:p.size], nil
}

// Put stores a copy of value under key.
func (p *Packet) Put(key string, value []byte) error {
	dst, err := p.Allocate(key, len(value))
	if err != nil {
		return err
	}
	copy(dst, value)
	return nil
}

func (p *Packet) PutString(key, value string) error {
	dst, err := p.Allocate(key, len(value))
	if err != nil {
		return err
	}
	copy(dst, value)
	return nil
}

// PutInt32 stores v as 4 little-endian bytes.
func (p *Packet) PutInt32(key string, v int32) error {
	dst, err := p.Allocate(key, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, uint32(v))
	return nil
}

func (p *Packet) PutInt64(key string, v int64) error {
	dst, err := p.Allocate(key, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(dst, uint64(v))
	return nil
}

// PutPackable lets v write itself into a freshly allocated range.
func (p *Packet) PutPackable(key string, v Packable) error {
	n := v.ValueSize()
	dst, err := p.Allocate(key, n)
	if err != nil {
		return err
	}
	if end := v.Write(dst, 0); end != n {
		return fmt.Errorf("packet: put %q: packable wrote %d of %d bytes", key, end, n)
	}
	return nil
}

// PutValue stores any fixed-width scalar in little-endian form.
func PutValue[T Scalar](p *Packet, key string, v T) error {
	dst, err := p.Allocate(key, binary.Size(v))
	if err != nil {
		return err
	}
	_, err = binary.Encode(dst, binary.LittleEndian, v)
	return err
}

// Get returns the bytes stored under key. The slice aliases the store.
func (p *Packet) Get(key string) ([]byte, error) {
	e, ok := p.dir[types.KeyHash(key)]
	if !ok {
		return nil, fmt.Errorf("packet: get %q: %w", key, ErrKeyNotFound)
	}
	end := e.Offset + e.Length
	return p.store[e.Offset:end:end], nil
}

// getSized returns the field only when it is exactly width bytes long.
func (p *Packet) getSized(key string, width int) ([]byte, error) {
	raw, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	if len(raw) != width {
		return nil, fmt.Errorf("packet: get %q: stored %d bytes, want %d: %w", key, len(raw), width, ErrTypeMismatch)
	}
	return raw, nil
}

func (p *Packet) GetInt32(key string) (int32, error) {
	raw, err := p.getSized(key, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(raw)), nil
}

func (p *Packet) GetInt64(key string) (int64, error) {
	raw, err := p.getSized(key, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(raw)), nil
}

// GetString copies the field into a string. Any length is accepted.
func (p *Packet) GetString(key string) (string, error) {
	raw, err := p.Get(key)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// GetValue decodes a scalar stored by PutValue. A field of the wrong width
// yields ErrTypeMismatch and the zero value.
func GetValue[T Scalar](p *Packet, key string) (T, error) {
	var v T
	raw, err := p.getSized(key, binary.Size(v))
	if err != nil {
		return v, err
	}
	if _, err := binary.Decode(raw, binary.LittleEndian, &v); err != nil {
		return v, fmt.Errorf("packet: get %q: %w", key, err)
	}
	return v, nil
}

func (p *Packet) Has(key string) bool {
	_, ok := p.dir[types.KeyHash(key)]
	return ok
}

// EntryFor returns the directory entry for key.
func (p *Packet) EntryFor(key string) (types.Entry, bool) {
	e, ok := p.dir[types.KeyHash(key)]
	return e, ok
}

// Entries lists the directory in wire order.
func (p *Packet) Entries() []types.Entry {
	out := make([]types.Entry, 0, len(p.dir))
	for _, h := range utils.SortedKeys(p.dir) {
		out = append(out, p.dir[h])
	}
	return out
}

// Field returns the bytes an entry points at.
func (p *Packet) Field(e types.Entry) []byte {
	end := e.Offset + e.Length
	if uint64(end) > uint64(p.size) || end < e.Offset {
		return nil
	}
	return p.store[e.Offset:end:end]
}
