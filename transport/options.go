package transport

import (
	"github.com/quickwritereader/packetkv/packet"
	"github.com/rs/zerolog"
)

const DefaultReadBufferSize = 4096

type options struct {
	readBufferSize int
	packetOpts     []packet.Option
	logger         zerolog.Logger
}

type Option func(*options)

// WithReadBufferSize sets how many bytes a receiver asks for per read.
func WithReadBufferSize(n int) Option {
	return func(o *options) { o.readBufferSize = n }
}

// WithPacketOptions configures the packets a receiver creates.
func WithPacketOptions(opts ...packet.Option) Option {
	return func(o *options) { o.packetOpts = append(o.packetOpts, opts...) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{readBufferSize: DefaultReadBufferSize, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.readBufferSize <= 0 {
		o.readBufferSize = DefaultReadBufferSize
	}
	return o
}
