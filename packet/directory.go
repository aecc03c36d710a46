package packet

import (
	"fmt"

	"github.com/quickwritereader/packetkv/types"
	"github.com/quickwritereader/packetkv/utils"
)

// Finalize writes the header and the trailing directory. Calling it again
// without changing fields produces the same bytes.
func (p *Packet) Finalize() error {
	if err := p.ensureWritable("finalize"); err != nil {
		return err
	}
	p.unfinalize()
	if err := p.reserve(len(p.dir) * types.EntrySize); err != nil {
		return err
	}

	offset := p.size
	pos := offset
	for _, h := range utils.SortedKeys(p.dir) {
		pos = types.PutEntry(p.store, pos, p.dir[h])
	}
	types.PutHeader(p.store, uint32(len(p.dir)), uint32(offset))
	p.keysOffset = offset
	p.size = pos
	return nil
}

// unfinalize drops a written directory so new fields can be appended.
func (p *Packet) unfinalize() {
	if p.keysOffset == 0 {
		return
	}
	p.size = p.keysOffset
	p.keysOffset = 0
	types.PutHeader(p.store, uint32(len(p.dir)), 0)
}

// parse decodes header and directory from store[:size]. Bytes past the
// advertised length are ignored. On failure the directory is left empty and
// the packet becomes an opaque blob.
func (p *Packet) parse() error {
	clear(p.dir)
	p.keysOffset = 0

	if p.size < types.HeaderSize {
		return p.invalidate(fmt.Errorf("packet: %d bytes, need %d byte header: %w", p.size, types.HeaderSize, ErrInvalidHeader))
	}
	numKeys, keysOffset := types.DecodeHeader(p.store)
	if keysOffset < types.HeaderSize {
		return p.invalidate(fmt.Errorf("packet: keys offset %d inside header: %w", keysOffset, ErrInvalidHeader))
	}
	expected := types.ExpectedSize(numKeys, keysOffset)
	if expected > uint64(p.size) {
		return p.invalidate(fmt.Errorf("packet: directory of %d keys at %d ends past %d bytes: %w",
			numKeys, keysOffset, p.size, ErrTruncatedDirectory))
	}

	for i := 0; i < int(numKeys); i++ {
		e := types.DecodeEntry(p.store, int(keysOffset)+i*types.EntrySize)
		if e.Offset < types.HeaderSize || e.End() > uint64(keysOffset) {
			clear(p.dir)
			return p.invalidate(fmt.Errorf("packet: entry %d [%d+%d] outside payload [8,%d): %w",
				i, e.Offset, e.Length, keysOffset, ErrTruncatedDirectory))
		}
		p.dir[e.Hash] = e
	}

	p.size = int(expected)
	p.keysOffset = int(keysOffset)
	p.phase = types.PhaseParsed
	return nil
}

func (p *Packet) invalidate(err error) error {
	p.phase = types.PhaseInvalid
	p.opts.Logger.Debug().Err(err).Int("size", p.size).Msg("packet rejected")
	return err
}
