package packable

import (
	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/types"
	"github.com/quickwritereader/packetkv/utils"
)

// PackMap stores each entry of the map as its own field. Keys are written in
// sorted order so equal maps produce equal packets.
type PackMap map[string]packet.Packable

func (m PackMap) Fields() []Field {
	out := make([]Field, 0, len(m))
	for _, k := range utils.SortedKeys(m) {
		out = append(out, KV(k, m[k]))
	}
	return out
}

func (m PackMap) PackInto(p *packet.Packet) error {
	return NewPackContainer(m.Fields()...).PackInto(p)
}

// PackMapStr stores string values under their keys.
type PackMapStr map[string]string

func (m PackMapStr) Fields() []Field {
	out := make([]Field, 0, len(m))
	for _, k := range utils.SortedKeys(m) {
		out = append(out, KV(k, PackString(m[k])))
	}
	return out
}

func (m PackMapStr) PackInto(p *packet.Packet) error {
	for _, k := range utils.SortedKeys(m) {
		if err := p.PutString(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// PackMapStrInt32 stores int32 values under their keys.
type PackMapStrInt32 map[string]int32

func (m PackMapStrInt32) Fields() []Field {
	out := make([]Field, 0, len(m))
	for _, k := range utils.SortedKeys(m) {
		out = append(out, KV(k, PackInt32(m[k])))
	}
	return out
}

func (m PackMapStrInt32) PackInto(p *packet.Packet) error {
	for _, k := range utils.SortedKeys(m) {
		if err := p.PutInt32(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// PackMapStrInt64 stores int64 values under their keys.
type PackMapStrInt64 map[string]int64

func (m PackMapStrInt64) Fields() []Field {
	out := make([]Field, 0, len(m))
	for _, k := range utils.SortedKeys(m) {
		out = append(out, KV(k, PackInt64(m[k])))
	}
	return out
}

func (m PackMapStrInt64) PackInto(p *packet.Packet) error {
	for _, k := range utils.SortedKeys(m) {
		if err := p.PutInt64(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// PackableMapOrdered writes fields in insertion order.
type PackableMapOrdered struct {
	om *types.OrderedMap[packet.Packable]
}

// PackMapOrdered creates a new PackableMapOrdered, optionally initialized with fields.
func PackMapOrdered(fields ...Field) *PackableMapOrdered {
	om := types.NewOrderedMap[packet.Packable]()
	for _, f := range fields {
		om.Set(f.Key, f.Value)
	}
	return &PackableMapOrdered{om: om}
}

// Set adds or updates a key/value pair.
func (m *PackableMapOrdered) Set(key string, val packet.Packable) {
	m.om.Set(key, val)
}

func (m *PackableMapOrdered) Fields() []Field {
	out := make([]Field, 0, m.om.Len())
	for k, v := range m.om.ItemsIter() {
		out = append(out, KV(k, v))
	}
	return out
}

func (m *PackableMapOrdered) PackInto(p *packet.Packet) error {
	return NewPackContainer(m.Fields()...).PackInto(p)
}
