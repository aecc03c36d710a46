package transport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
	"testing/iotest"

	"github.com/klauspost/compress/zstd"
	"github.com/quickwritereader/packetkv/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStream(t *testing.T, w io.Writer, count int) {
	t.Helper()
	s := NewStreamSender(w)
	for i := 0; i < count; i++ {
		p := newPacket(t, int64(i))
		require.NoError(t, p.PutString("pad", string(bytes.Repeat([]byte{'x'}, i*31))))
		require.NoError(t, Send(s, p))
	}
	assert.Equal(t, uint64(count), s.Sent())
}

func readAll(t *testing.T, sr *StreamReceiver) []*packet.Packet {
	t.Helper()
	var out []*packet.Packet
	require.NoError(t, sr.Each(func(p *packet.Packet) error {
		out = append(out, p)
		return nil
	}))
	return out
}

func checkSequence(t *testing.T, got []*packet.Packet, count int) {
	t.Helper()
	require.Len(t, got, count)
	for i, p := range got {
		seq, err := p.GetInt64("seq")
		require.NoError(t, err)
		assert.Equal(t, int64(i), seq)
		pad, err := p.GetString("pad")
		require.NoError(t, err)
		assert.Len(t, pad, i*31)
		s, err := p.GetString("key1")
		require.NoError(t, err)
		assert.Equal(t, " bla bla bla ", s)
	}
}

func TestStream_RoundTripAcrossReadSizes(t *testing.T) {
	var wire bytes.Buffer
	writeStream(t, &wire, 6)

	for _, size := range []int{1, 3, 8, 17, 64, 4096} {
		t.Run(fmt.Sprintf("buf=%d", size), func(t *testing.T) {
			sr := NewStreamReceiver(bytes.NewReader(wire.Bytes()), WithReadBufferSize(size))
			checkSequence(t, readAll(t, sr), 6)

			_, err := sr.Next()
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestStream_OneByteReader(t *testing.T) {
	var wire bytes.Buffer
	writeStream(t, &wire, 3)

	sr := NewStreamReceiver(iotest.OneByteReader(bytes.NewReader(wire.Bytes())))
	checkSequence(t, readAll(t, sr), 3)
}

func TestStream_DataErrReader(t *testing.T) {
	var wire bytes.Buffer
	writeStream(t, &wire, 2)

	sr := NewStreamReceiver(iotest.DataErrReader(bytes.NewReader(wire.Bytes())))
	checkSequence(t, readAll(t, sr), 2)
}

func TestStream_TruncatedStream(t *testing.T) {
	var wire bytes.Buffer
	writeStream(t, &wire, 2)
	cut := wire.Bytes()[:wire.Len()-5]

	sr := NewStreamReceiver(bytes.NewReader(cut))
	_, err := sr.Next()
	require.NoError(t, err)
	_, err = sr.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStream_MalformedPacketIsSticky(t *testing.T) {
	garbage := []byte{1, 0, 0, 0, 2, 0, 0, 0, 0xFF, 0xFF}
	sr := NewStreamReceiver(bytes.NewReader(garbage))

	_, err := sr.Next()
	require.ErrorIs(t, err, packet.ErrInvalidHeader)
	_, err = sr.Next()
	assert.ErrorIs(t, err, packet.ErrInvalidHeader)
}

func TestStream_ReaderErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	sr := NewStreamReceiver(iotest.ErrReader(boom))
	_, err := sr.Next()
	assert.ErrorIs(t, err, boom)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStreamSender_WriteFailureStillReleases(t *testing.T) {
	s := NewStreamSender(failingWriter{})
	done := 0
	err := s.Send([]byte{0, 0, 0, 0, 8, 0, 0, 0}, func() { done++ })
	assert.Error(t, err)
	assert.Equal(t, 1, done)
	assert.Zero(t, s.Sent())
}

func TestStreamSender_FlushesBufferedWriter(t *testing.T) {
	var sink bytes.Buffer
	bw := bufio.NewWriterSize(&sink, 4096)
	s := NewStreamSender(bw)

	p := newPacket(t, 1)
	require.NoError(t, Send(s, p))
	assert.Equal(t, p.Size(), sink.Len(), "packet reaches the underlying writer")
}

func TestStream_ZstdRoundTrip(t *testing.T) {
	var compressed bytes.Buffer
	enc, err := NewZstdWriter(&compressed, ZstdLevel("fastest"))
	require.NoError(t, err)
	writeStream(t, enc, 5)
	require.NoError(t, enc.Close())

	dec, err := NewZstdReader(bytes.NewReader(compressed.Bytes()))
	require.NoError(t, err)
	defer dec.Close()

	sr := NewStreamReceiver(dec, WithReadBufferSize(7))
	checkSequence(t, readAll(t, sr), 5)
}

func TestZstdLevel(t *testing.T) {
	assert.Equal(t, zstd.SpeedBestCompression, ZstdLevel("best"))
	assert.Equal(t, zstd.SpeedDefault, ZstdLevel("nonsense"))
}
