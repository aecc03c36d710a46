package transport

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/quickwritereader/packetkv/packet"
)

var ErrClosed = errors.New("transport: closed")

// Sender transmits finalized packet bytes. done must be called exactly once,
// after data has been written or the write has failed; data must not be
// touched afterwards.
type Sender interface {
	Send(data []byte, done func()) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(data []byte, done func()) error

func (f SenderFunc) Send(data []byte, done func()) error {
	return f(data, done)
}

// Send hands p off to s. On return p is Sent; MakeWriteable gives it a new
// store if it is to be reused.
func Send(s Sender, p *packet.Packet) error {
	data, release, err := p.Handoff()
	if err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	return s.Send(data, release)
}

// Broadcast hands p off once and sends the same bytes through every sender.
// The store is released after the last sender calls done. Errors from
// individual senders are joined.
func Broadcast(p *packet.Packet, senders ...Sender) error {
	data, release, err := p.Handoff()
	if err != nil {
		return fmt.Errorf("transport: broadcast: %w", err)
	}
	if len(senders) == 0 {
		release()
		return nil
	}

	ref := newSharedBuffer(data, release, len(senders))
	var errs []error
	for i, s := range senders {
		if err := s.Send(ref.data, ref.doneFunc()); err != nil {
			errs = append(errs, fmt.Errorf("transport: broadcast target %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// sharedBuffer counts outstanding senders of one store.
type sharedBuffer struct {
	data      []byte
	refCount  atomic.Int32
	finalizer func()
}

func newSharedBuffer(data []byte, finalizer func(), refs int) *sharedBuffer {
	b := &sharedBuffer{data: data, finalizer: finalizer}
	b.refCount.Store(int32(refs))
	return b
}

// doneFunc returns a release callback that only counts once.
func (b *sharedBuffer) doneFunc() func() {
	var called atomic.Bool
	return func() {
		if called.Swap(true) {
			return
		}
		if b.refCount.Add(-1) == 0 {
			b.finalizer()
		}
	}
}
