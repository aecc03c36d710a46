package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/types"
	"github.com/rs/zerolog"
)

type flusher interface {
	Flush() error
}

// StreamSender writes whole packets to an io.Writer. Writers with a Flush
// method, such as bufio.Writer or a zstd encoder, are flushed after every
// packet. It is safe for concurrent use.
type StreamSender struct {
	mu     sync.Mutex
	w      io.Writer
	logger zerolog.Logger
	sent   uint64
}

func NewStreamSender(w io.Writer, opts ...Option) *StreamSender {
	o := buildOptions(opts)
	return &StreamSender{w: w, logger: o.logger}
}

func (s *StreamSender) Send(data []byte, done func()) error {
	defer done()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return ErrClosed
	}
	if _, err := s.w.Write(data); err != nil {
		s.logger.Warn().Err(err).Int("size", len(data)).Msg("stream write failed")
		return fmt.Errorf("transport: stream write: %w", err)
	}
	if f, ok := s.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("transport: stream flush: %w", err)
		}
	}
	s.sent++
	s.logger.Debug().Int("size", len(data)).Uint64("seq", s.sent).Msg("packet written")
	return nil
}

// Sent returns the number of packets written.
func (s *StreamSender) Sent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// StreamReceiver splits a byte stream back into packets. Bytes read past the
// end of one packet are kept for the next.
type StreamReceiver struct {
	r       io.Reader
	buf     []byte
	pending []byte
	err     error
	opts    options
}

func NewStreamReceiver(r io.Reader, opts ...Option) *StreamReceiver {
	o := buildOptions(opts)
	return &StreamReceiver{r: r, buf: make([]byte, o.readBufferSize), opts: o}
}

// Next returns the next complete packet. It returns io.EOF when the stream
// ends on a packet boundary and io.ErrUnexpectedEOF when it ends inside one.
// A malformed packet leaves the stream unusable; every later call returns
// the same error.
func (sr *StreamReceiver) Next() (*packet.Packet, error) {
	if sr.err != nil && len(sr.pending) == 0 {
		return nil, sr.err
	}
	p := packet.NewReceiver(sr.opts.packetOpts...)
	for {
		if len(sr.pending) > 0 {
			n, err := p.Append(sr.pending)
			sr.pending = sr.pending[n:]
			if err != nil {
				p.Release()
				sr.pending = nil
				sr.err = fmt.Errorf("transport: stream: %w", err)
				sr.opts.logger.Warn().Err(err).Msg("dropping stream after malformed packet")
				return nil, sr.err
			}
			if p.Complete() {
				sr.opts.logger.Debug().Int("size", p.Size()).Int("keys", p.NumKeys()).Msg("packet received")
				return p, nil
			}
		}

		if sr.err != nil {
			err := sr.err
			if errors.Is(err, io.EOF) {
				if p.Phase() != types.PhaseEmpty {
					err = io.ErrUnexpectedEOF
				}
			}
			p.Release()
			return nil, err
		}

		n, err := sr.r.Read(sr.buf)
		if n > 0 {
			sr.pending = sr.buf[:n]
		}
		if err != nil {
			sr.err = err
		}
	}
}

// Each calls fn for every packet until the stream ends or fn returns an
// error. A clean end of stream is not an error.
func (sr *StreamReceiver) Each(fn func(*packet.Packet) error) error {
	for {
		p, err := sr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
}
