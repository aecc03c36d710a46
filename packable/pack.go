package packable

import (
	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/types"
)

// Field pairs a key with the value stored under it.
type Field struct {
	Key   string
	Value packet.Packable
}

func KV(key string, v packet.Packable) Field {
	return Field{Key: key, Value: v}
}

// PackContainer is an ordered list of fields written into one packet.
type PackContainer struct {
	fields []Field
}

func NewPackContainer(fields ...Field) PackContainer {
	return PackContainer{fields: fields}
}

// ValueSize returns the payload bytes the container writes, null fields excluded.
func (pc PackContainer) ValueSize() int {
	size := 0
	for _, f := range pc.fields {
		if isNull(f.Value) {
			continue
		}
		size += f.Value.ValueSize()
	}
	return size
}

// PackInto stores every non-null field in p, in order.
func (pc PackContainer) PackInto(p *packet.Packet) error {
	for _, f := range pc.fields {
		if isNull(f.Value) {
			continue
		}
		if err := p.PutPackable(f.Key, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// Pack builds a finalized packet holding fields. The store is sized up front
// so that it never grows while writing.
func Pack(fields ...Field) (*packet.Packet, error) {
	pc := NewPackContainer(fields...)
	p := packet.New(packet.WithInitialCapacity(pc.wireSize()))
	if err := pc.PackInto(p); err != nil {
		return nil, err
	}
	if err := p.Finalize(); err != nil {
		return nil, err
	}
	return p, nil
}

func (pc PackContainer) wireSize() int {
	n := 0
	for _, f := range pc.fields {
		if !isNull(f.Value) {
			n++
		}
	}
	return types.HeaderSize + pc.ValueSize() + n*types.EntrySize
}

func isNull(v packet.Packable) bool {
	n, ok := v.(Nullable)
	return ok && n.IsNull()
}
