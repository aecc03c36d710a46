package packet

import (
	"fmt"

	"github.com/quickwritereader/packetkv/types"
)

// Append feeds the next chunk of a streamed packet and returns how many bytes
// of chunk were consumed. Bytes past the end of this packet are left
// unconsumed and belong to the next one; the caller submits them to a new
// receiver. Header bytes are retained even while fewer than eight are known,
// and they count as consumed: Append(wire[:3]) returns 3, and the caller
// continues with wire[3:].
//
// Once the advertised length is reached the directory is parsed and the
// phase becomes Parsed, or Invalid when an entry falls outside the payload.
// Append on a parsed or read-only packet is a no-op.
func (p *Packet) Append(chunk []byte) (int, error) {
	switch {
	case p.state != types.StateOwnedMutable, p.phase == types.PhaseParsed:
		return 0, nil
	case p.phase == types.PhaseInvalid:
		return 0, fmt.Errorf("packet: append to rejected packet: %w", ErrInvalidHeader)
	case p.phase == types.PhaseBuilding:
		return 0, ErrNotAssembling
	}

	consumed := 0
	if p.size < types.HeaderSize {
		n := copy(p.store[p.size:types.HeaderSize], chunk)
		p.size += n
		consumed += n
		if p.size < types.HeaderSize {
			p.phase = types.PhaseAwaitingHeader
			return consumed, nil
		}
	}

	numKeys, keysOffset := types.DecodeHeader(p.store)
	expected := types.ExpectedSize(numKeys, keysOffset)
	if keysOffset < types.HeaderSize || expected > uint64(p.opts.MaxPacketSize) {
		return consumed, p.invalidate(fmt.Errorf("packet: header advertises %d keys at %d (%d bytes, limit %d): %w",
			numKeys, keysOffset, expected, p.opts.MaxPacketSize, ErrInvalidHeader))
	}
	needed := int(expected) - p.size
	if needed < 0 {
		return consumed, p.invalidate(fmt.Errorf("packet: %d bytes received, header advertises %d: %w",
			p.size, expected, ErrInvalidHeader))
	}
	p.phase = types.PhaseAwaitingBody

	if err := p.reserve(needed); err != nil {
		return consumed, err
	}
	take := min(needed, len(chunk)-consumed)
	copy(p.store[p.size:], chunk[consumed:consumed+take])
	p.size += take
	consumed += take

	if p.size == int(expected) {
		if err := p.parse(); err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}

// Complete reports whether a receiver has assembled and parsed a packet.
func (p *Packet) Complete() bool {
	return p.phase == types.PhaseParsed
}
