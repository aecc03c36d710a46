package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) net.PacketConn {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestDatagram_RoundTrip(t *testing.T) {
	server, client := listenUDP(t), listenUDP(t)
	sender := NewDatagramSender(client, server.LocalAddr())
	receiver := NewDatagramReceiver(server)

	p := newPacket(t, 42)
	require.NoError(t, Send(sender, p))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, from, release, err := receiver.Receive(ctx)
	require.NoError(t, err)
	defer release()

	assert.Equal(t, client.LocalAddr().String(), from.String())
	assert.Equal(t, types.StateBorrowedReadOnly, got.State())
	seq, err := got.GetInt64("seq")
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
}

func TestDatagram_MakeWriteableSurvivesRelease(t *testing.T) {
	server, client := listenUDP(t), listenUDP(t)
	require.NoError(t, Send(NewDatagramSender(client, server.LocalAddr()), newPacket(t, 5)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, _, release, err := NewDatagramReceiver(server).Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, got.MakeWriteable())
	release()
	release()

	require.NoError(t, got.PutString("reply", "ack"))
	seq, err := got.GetInt64("seq")
	require.NoError(t, err)
	assert.Equal(t, int64(5), seq)
}

func TestDatagram_MalformedIsReported(t *testing.T) {
	server, client := listenUDP(t), listenUDP(t)
	_, err := client.WriteTo([]byte{1, 2, 3}, server.LocalAddr())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, from, _, err := NewDatagramReceiver(server).Receive(ctx)
	assert.ErrorIs(t, err, packet.ErrInvalidHeader)
	assert.NotNil(t, from)
}

func TestDatagram_ContextCancel(t *testing.T) {
	server := listenUDP(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, _, err := NewDatagramReceiver(server).Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDatagram_TooLarge(t *testing.T) {
	server, client := listenUDP(t), listenUDP(t)
	p := packet.New()
	_, err := p.Allocate("blob", MaxDatagramSize)
	require.NoError(t, err)

	err = Send(NewDatagramSender(client, server.LocalAddr()), p)
	assert.ErrorIs(t, err, ErrDatagramTooLarge)
}
