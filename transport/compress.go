package transport

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// NewZstdWriter wraps w in a zstd stream. StreamSender flushes it after every
// packet so the peer can decode without waiting for the frame to end. Close
// the encoder to finish the stream.
func NewZstdWriter(w io.Writer, level zstd.EncoderLevel) (*zstd.Encoder, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("transport: zstd writer: %w", err)
	}
	return enc, nil
}

// NewZstdReader wraps r for use with StreamReceiver.
func NewZstdReader(r io.Reader) (*zstd.Decoder, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("transport: zstd reader: %w", err)
	}
	return dec, nil
}

// zstdLevels maps config names to encoder levels.
var zstdLevels = map[string]zstd.EncoderLevel{
	"fastest": zstd.SpeedFastest,
	"default": zstd.SpeedDefault,
	"better":  zstd.SpeedBetterCompression,
	"best":    zstd.SpeedBestCompression,
}

// ZstdLevel resolves a level name, falling back to the default level.
func ZstdLevel(name string) zstd.EncoderLevel {
	if l, ok := zstdLevels[name]; ok {
		return l
	}
	return zstd.SpeedDefault
}
