package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/types"
	"github.com/quickwritereader/packetkv/utils"
	"github.com/rs/zerolog"
)

// MaxDatagramSize is the largest UDP payload.
const MaxDatagramSize = 65535

var ErrDatagramTooLarge = errors.New("transport: packet exceeds datagram size")

// DatagramSender writes each packet as one datagram to a fixed address.
type DatagramSender struct {
	conn   net.PacketConn
	addr   net.Addr
	logger zerolog.Logger
}

func NewDatagramSender(conn net.PacketConn, addr net.Addr, opts ...Option) *DatagramSender {
	o := buildOptions(opts)
	return &DatagramSender{conn: conn, addr: addr, logger: o.logger}
}

func (d *DatagramSender) Send(data []byte, done func()) error {
	defer done()
	if len(data) > MaxDatagramSize {
		return fmt.Errorf("transport: %d bytes: %w", len(data), ErrDatagramTooLarge)
	}
	if _, err := d.conn.WriteTo(data, d.addr); err != nil {
		d.logger.Warn().Err(err).Str("addr", d.addr.String()).Msg("datagram write failed")
		return fmt.Errorf("transport: datagram write: %w", err)
	}
	d.logger.Debug().Int("size", len(data)).Str("addr", d.addr.String()).Msg("datagram sent")
	return nil
}

// DatagramReceiver reads one packet per datagram into pooled buffers.
type DatagramReceiver struct {
	conn net.PacketConn
	pool *utils.BufferPool
	opts options
}

func NewDatagramReceiver(conn net.PacketConn, opts ...Option) *DatagramReceiver {
	return &DatagramReceiver{conn: conn, pool: utils.Default, opts: buildOptions(opts)}
}

// Receive blocks until a datagram arrives or ctx is done. The returned packet
// borrows a pooled buffer; call release once the packet is no longer read.
// MakeWriteable detaches it from the buffer.
func (d *DatagramReceiver) Receive(ctx context.Context) (*packet.Packet, net.Addr, func(), error) {
	stop := context.AfterFunc(ctx, func() {
		_ = d.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := d.pool.Acquire(MaxDatagramSize)
	n, addr, err := d.conn.ReadFrom(buf)
	if err != nil {
		d.pool.Release(buf)
		if ctxErr := ctx.Err(); ctxErr != nil {
			_ = d.conn.SetReadDeadline(time.Time{})
			return nil, nil, nil, ctxErr
		}
		return nil, nil, nil, fmt.Errorf("transport: datagram read: %w", err)
	}

	p, err := packet.FromBytes(buf[:n], d.opts.packetOpts...)
	if err != nil {
		d.pool.Release(buf)
		d.opts.logger.Warn().Err(err).Int("size", n).Str("from", addr.String()).Msg("dropping malformed datagram")
		return nil, addr, nil, fmt.Errorf("transport: datagram from %s: %w", addr, err)
	}
	var once sync.Once
	release := func() {
		once.Do(func() {
			if p.State() == types.StateBorrowedReadOnly {
				p.Release()
			}
			d.pool.Release(buf)
		})
	}
	d.opts.logger.Debug().Int("size", n).Int("keys", p.NumKeys()).Str("from", addr.String()).Msg("datagram received")
	return p, addr, release, nil
}
