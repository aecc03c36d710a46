package transport

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPacket(t *testing.T, seq int64) *packet.Packet {
	t.Helper()
	p := packet.New()
	require.NoError(t, p.PutInt32("type", 6654))
	require.NoError(t, p.PutInt64("seq", seq))
	require.NoError(t, p.PutString("key1", " bla bla bla "))
	return p
}

type recordingSender struct {
	got   [][]byte
	dones int
	err   error
}

func (r *recordingSender) Send(data []byte, done func()) error {
	r.got = append(r.got, append([]byte(nil), data...))
	done()
	r.dones++
	return r.err
}

func TestSend_HandsOffFinalizedBytes(t *testing.T) {
	p := newPacket(t, 1)
	want, err := p.Clone(0).Bytes()
	require.NoError(t, err)

	rec := &recordingSender{}
	require.NoError(t, Send(rec, p))
	assert.Equal(t, types.StateSent, p.State())
	require.Len(t, rec.got, 1)
	assert.Equal(t, want, rec.got[0])
	assert.Equal(t, 1, rec.dones)
}

func TestSend_RejectsBorrowed(t *testing.T) {
	data, err := newPacket(t, 1).Bytes()
	require.NoError(t, err)
	borrowed, err := packet.FromBytes(data)
	require.NoError(t, err)

	err = Send(SenderFunc(func([]byte, func()) error {
		t.Fatal("sender must not be called")
		return nil
	}), borrowed)
	assert.ErrorIs(t, err, packet.ErrImmutable)
}

func TestBroadcast_SameBytesEverywhere(t *testing.T) {
	p := newPacket(t, 7)
	a, b := &recordingSender{}, &recordingSender{}
	failing := &recordingSender{err: errors.New("link down")}

	err := Broadcast(p, a, failing, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target 1")

	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	assert.Equal(t, a.got[0], b.got[0])
	assert.Equal(t, a.got[0], failing.got[0])
	assert.Equal(t, types.StateSent, p.State())
}

func TestBroadcast_NoSenders(t *testing.T) {
	p := newPacket(t, 1)
	assert.NoError(t, Broadcast(p))
	assert.Equal(t, types.StateSent, p.State())
}

func TestSharedBuffer_ReleasesAfterLastDone(t *testing.T) {
	var released atomic.Int32
	ref := newSharedBuffer([]byte("x"), func() { released.Add(1) }, 3)

	d1, d2, d3 := ref.doneFunc(), ref.doneFunc(), ref.doneFunc()
	d1()
	d1()
	d2()
	assert.Equal(t, int32(0), released.Load(), "a repeated done does not count twice")
	d3()
	assert.Equal(t, int32(1), released.Load())
	d3()
	assert.Equal(t, int32(1), released.Load())
}
