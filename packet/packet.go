package packet

import (
	"maps"

	"github.com/quickwritereader/packetkv/types"
)

// Packet is a key-value packet backed by one contiguous store.
type Packet struct {
	store      []byte // len(store) is the capacity
	size       int    // bytes in use, directory included once written
	keysOffset int    // start of the written directory, 0 when stale
	dir        map[uint32]types.Entry
	state      types.State
	phase      types.Phase
	opts       *Options
}

// New returns an empty owned packet with the configured capacity reserved.
func New(opts ...Option) *Packet {
	p := &Packet{opts: buildOptions(opts), dir: make(map[uint32]types.Entry)}
	p.init()
	return p
}

// NewReceiver returns an owned packet ready to be filled by Append.
func NewReceiver(opts ...Option) *Packet {
	p := &Packet{opts: buildOptions(opts), dir: make(map[uint32]types.Entry)}
	p.init()
	p.size = 0
	p.phase = types.PhaseEmpty
	return p
}

// FromBytes wraps b without copying and parses it. The packet borrows b: it
// never writes to it, grows it or releases it. When b is malformed the packet
// is still returned, as an opaque blob with no fields, together with the
// parse error.
func FromBytes(b []byte, opts ...Option) (*Packet, error) {
	p := &Packet{
		opts:  buildOptions(opts),
		dir:   make(map[uint32]types.Entry),
		store: b[:len(b):len(b)],
		size:  len(b),
		state: types.StateBorrowedReadOnly,
	}
	if err := p.parse(); err != nil {
		return p, err
	}
	return p, nil
}

func (p *Packet) init() {
	p.store = p.acquire(max(p.opts.InitialCapacity, types.HeaderSize))
	p.size = types.HeaderSize
	p.keysOffset = 0
	clear(p.dir)
	p.state = types.StateOwnedMutable
	p.phase = types.PhaseBuilding
	types.PutHeader(p.store, 0, 0)
}

// Clone returns an owned, unfinalized copy of p with extra spare bytes
// (CloneExtra when extra is negative). A written directory is not copied as
// payload; the field entries are carried over instead. The spare capacity of
// the copy is zeroed. A released packet clones to an empty one, as New
// returns. Cloning a Sent packet is only valid before its handoff release
// func has run.
func (p *Packet) Clone(extra int) *Packet {
	if p.state == types.StateReleased {
		c := &Packet{opts: p.opts, dir: make(map[uint32]types.Entry)}
		c.init()
		return c
	}
	if extra < 0 {
		extra = p.opts.CloneExtra
	}
	end := p.payloadEnd()
	c := &Packet{
		opts:  p.opts,
		dir:   maps.Clone(p.dir),
		state: types.StateOwnedMutable,
		phase: p.phase,
	}
	zeroed := c.opts.Pool.AcquireZeroed(max(end+extra, types.HeaderSize))
	c.store = zeroed[:cap(zeroed)]
	copy(c.store, p.store[:end])
	c.size = end
	switch p.phase {
	case types.PhaseBuilding, types.PhaseParsed:
		c.phase = types.PhaseBuilding
		types.PutHeader(c.store, uint32(len(c.dir)), 0)
	}
	return c
}

func (p *Packet) acquire(n int) []byte {
	b := p.opts.Pool.Acquire(n)
	return b[:cap(b)]
}

func (p *Packet) payloadEnd() int {
	if p.keysOffset != 0 {
		return p.keysOffset
	}
	return p.size
}

// Size is the length of the packet on the wire: header, payload and
// directory. For an unfinalized packet it includes the directory that
// Finalize will write. For a receiver it is the number of bytes accumulated.
func (p *Packet) Size() int {
	if p.phase == types.PhaseBuilding && p.keysOffset == 0 && p.state != types.StateReleased {
		return p.size + len(p.dir)*types.EntrySize
	}
	return p.size
}

// Cap is the allocated size of the store.
func (p *Packet) Cap() int {
	return len(p.store)
}

func (p *Packet) NumKeys() int {
	return len(p.dir)
}

func (p *Packet) State() types.State {
	return p.state
}

func (p *Packet) Phase() types.Phase {
	return p.phase
}

// Finalized reports whether the directory currently written matches the fields.
func (p *Packet) Finalized() bool {
	return p.keysOffset != 0
}

// Bytes returns the finalized wire bytes without transferring ownership. An
// owned packet being built is finalized first. The slice aliases the store.
func (p *Packet) Bytes() ([]byte, error) {
	if p.state == types.StateReleased {
		return nil, nil
	}
	if p.state == types.StateOwnedMutable && !p.phase.Assembling() && p.phase != types.PhaseInvalid && p.keysOffset == 0 {
		if err := p.Finalize(); err != nil {
			return nil, err
		}
	}
	return p.store[:p.size:p.size], nil
}
