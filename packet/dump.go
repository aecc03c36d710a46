package packet

import (
	"encoding/hex"

	json "github.com/goccy/go-json"
)

const dumpPreviewBytes = 16

// Dump is a JSON-friendly description of a packet's layout.
type Dump struct {
	State      string      `json:"state"`
	Phase      string      `json:"phase"`
	Size       int         `json:"size"`
	Capacity   int         `json:"capacity"`
	NumKeys    int         `json:"numKeys"`
	KeysOffset int         `json:"keysOffset"`
	Entries    []DumpEntry `json:"entries"`
}

type DumpEntry struct {
	Hash    uint32 `json:"hash"`
	Offset  uint32 `json:"offset"`
	Length  uint32 `json:"length"`
	Preview string `json:"preview"` // hex of the first bytes
}

func (p *Packet) Dump() Dump {
	d := Dump{
		State:      p.state.String(),
		Phase:      p.phase.String(),
		Size:       p.Size(),
		Capacity:   p.Cap(),
		NumKeys:    p.NumKeys(),
		KeysOffset: p.keysOffset,
		Entries:    make([]DumpEntry, 0, len(p.dir)),
	}
	for _, e := range p.Entries() {
		raw := p.Field(e)
		if len(raw) > dumpPreviewBytes {
			raw = raw[:dumpPreviewBytes]
		}
		d.Entries = append(d.Entries, DumpEntry{
			Hash:    e.Hash,
			Offset:  e.Offset,
			Length:  e.Length,
			Preview: hex.EncodeToString(raw),
		})
	}
	return d
}

// JSON renders the dump indented for humans.
func (d Dump) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
