package packet

import (
	"fmt"

	"github.com/quickwritereader/packetkv/types"
)

// reserve makes room for n more bytes after size. Only an owned store grows;
// it is replaced by max(size+n+slack, cap*3/2) bytes and the old one goes
// back to the pool.
func (p *Packet) reserve(n int) error {
	need := p.size + n
	if need <= len(p.store) {
		return nil
	}
	if p.state != types.StateOwnedMutable {
		return fmt.Errorf("packet: reserve %d bytes in %s store: %w", n, p.state, ErrCapacity)
	}

	newCap := max(need+p.opts.Slack, len(p.store)*3/2)
	grown := p.acquire(newCap)
	copy(grown, p.store[:p.size])
	p.opts.Pool.Release(p.store)
	p.opts.Logger.Debug().
		Int("from", len(p.store)).
		Int("to", len(grown)).
		Int("size", p.size).
		Msg("packet store grown")
	p.store = grown
	return nil
}

// ensureWritable checks that fields may be added. A released packet is
// reinitialized with a fresh owned store.
func (p *Packet) ensureWritable(op string) error {
	switch p.state {
	case types.StateReleased:
		p.init()
		return nil
	case types.StateOwnedMutable:
		if p.phase == types.PhaseBuilding || p.phase == types.PhaseParsed {
			return nil
		}
		return fmt.Errorf("packet: %s on %s packet: %w", op, p.phase, ErrImmutable)
	default:
		return fmt.Errorf("packet: %s on %s packet: %w", op, p.state, ErrImmutable)
	}
}
