package scheme

import (
	"errors"
	"fmt"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/types"
)

// NamedField binds a scheme to a packet key.
type NamedField struct {
	Name   string
	Scheme Scheme
}

func SF(name string, s Scheme) NamedField {
	return NamedField{Name: name, Scheme: s}
}

// SchemeFields describes a whole packet as an ordered list of named fields.
// The directory only stores key hashes, so the names come from here.
type SchemeFields struct {
	Fields []NamedField
	// Strict rejects packets carrying keys that no field declares.
	Strict bool
}

func SFields(fields ...NamedField) SchemeFields {
	return SchemeFields{Fields: fields}
}

// SFieldsStrict is SFields that also rejects undeclared keys.
func SFieldsStrict(fields ...NamedField) SchemeFields {
	return SchemeFields{Fields: fields, Strict: true}
}

// Names returns the field names in declaration order.
func (s SchemeFields) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

func (s SchemeFields) ValidatePacket(p *packet.Packet) error {
	for _, f := range s.Fields {
		if err := f.Scheme.Validate(p, f.Name); err != nil {
			return err
		}
	}
	return s.checkStrict(p)
}

// DecodePacket decodes every declared field in declaration order. Missing
// nullable fields decode to nil.
func (s SchemeFields) DecodePacket(p *packet.Packet) (*types.OrderedMapAny, error) {
	out := types.NewOrderedMapAny()
	for _, f := range s.Fields {
		v, err := f.Scheme.Decode(p, f.Name)
		if err != nil {
			return nil, err
		}
		out.Set(f.Name, v)
	}
	if err := s.checkStrict(p); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodePacket builds a finalized packet from values keyed by field name. A
// nil or absent value is skipped; the result is then validated as a whole.
func (s SchemeFields) EncodePacket(values map[string]any, opts ...packet.Option) (*packet.Packet, error) {
	p := packet.New(opts...)
	if err := s.EncodeInto(p, values); err != nil {
		return nil, err
	}
	if err := p.Finalize(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s SchemeFields) EncodeInto(p *packet.Packet, values map[string]any) error {
	declared := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		declared[f.Name] = struct{}{}
		v, ok := values[f.Name]
		if !ok || v == nil {
			continue
		}
		enc, ok := f.Scheme.(Encoder)
		if !ok {
			return fmt.Errorf("scheme: field %q: %T cannot encode: %w", f.Name, f.Scheme, ErrUnsupportedValue)
		}
		if err := enc.Encode(p, f.Name, v); err != nil {
			return err
		}
	}
	if s.Strict {
		for name := range values {
			if _, ok := declared[name]; !ok {
				return fmt.Errorf("scheme: value %q: %w", name, ErrUnknownField)
			}
		}
	}
	return s.ValidatePacket(p)
}

func (s SchemeFields) checkStrict(p *packet.Packet) error {
	if !s.Strict {
		return nil
	}
	known := make(map[uint32]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		known[types.KeyHash(f.Name)] = struct{}{}
	}
	var errs []error
	for _, e := range p.Entries() {
		if _, ok := known[e.Hash]; !ok {
			errs = append(errs, fmt.Errorf("scheme: key hash %d at offset %d: %w", e.Hash, e.Offset, ErrUnknownField))
		}
	}
	return errors.Join(errs...)
}
