package packet

import (
	"fmt"
	"sync"

	"github.com/quickwritereader/packetkv/types"
)

// MakeWriteable turns a borrowed or sent packet into an owned one by copying
// its bytes into a fresh store. The previous store is left untouched for
// whoever owns it. Fields stay addressable. An invalid blob has no fields to
// extend and is refused with ErrImmutable. A Sent packet may only be copied
// before its handoff release func has run.
func (p *Packet) MakeWriteable() error {
	switch p.state {
	case types.StateOwnedMutable:
		return nil
	case types.StateReleased:
		p.init()
		return nil
	}
	if p.phase == types.PhaseInvalid {
		return fmt.Errorf("packet: make writeable on %s packet: %w", p.phase, ErrImmutable)
	}
	if !p.state.CanTransition(types.StateOwnedMutable) {
		return fmt.Errorf("packet: make writeable from %s: %w", p.state, ErrImmutable)
	}

	fresh := p.acquire(max(p.size*3/2, p.size+p.opts.Slack, types.HeaderSize))
	copy(fresh, p.store[:p.size])
	p.store = fresh
	p.state = types.StateOwnedMutable
	return nil
}

// Release drops the store. An owned store is returned to the pool at once; a
// borrowed or sent one is only forgotten. The packet is left empty and the
// next write starts a new owned store.
func (p *Packet) Release() {
	if p.state == types.StateOwnedMutable && p.store != nil {
		p.opts.Pool.Release(p.store)
	}
	p.store = nil
	p.size = 0
	p.keysOffset = 0
	clear(p.dir)
	p.state = types.StateReleased
	p.phase = types.PhaseBuilding
}

// Handoff finalizes p and transfers its store to a transport. The returned
// release func must be called once the bytes have been transmitted; calling
// it more than once is harmless. After Handoff the packet is Sent: reads keep
// working until release is called, writes need MakeWriteable. Release hands
// the store back to the pool, so Get, Clone and MakeWriteable on the Sent
// packet are only valid before then.
func (p *Packet) Handoff() ([]byte, func(), error) {
	if !p.state.CanTransition(types.StateSent) {
		return nil, nil, fmt.Errorf("packet: handoff from %s: %w", p.state, ErrImmutable)
	}
	if err := p.Finalize(); err != nil {
		return nil, nil, err
	}

	store, pool := p.store, p.opts.Pool
	var once sync.Once
	release := func() {
		once.Do(func() { pool.Release(store) })
	}
	p.state = types.StateSent
	return p.store[:p.size:p.size], release, nil
}
