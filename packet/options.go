package packet

import (
	"github.com/quickwritereader/packetkv/utils"
	"github.com/rs/zerolog"
)

const (
	DefaultInitialCapacity = 1500
	DefaultSlack           = 100
	DefaultCloneExtra      = 512
	DefaultMaxPacketSize   = 8 * 1024 * 1024
)

// Options tunes store allocation and reassembly limits.
type Options struct {
	// InitialCapacity is the store size reserved by New and NewReceiver.
	InitialCapacity int
	// Slack is added on top of the requested size when the store grows.
	Slack int
	// CloneExtra is the spare capacity given to Clone(-1).
	CloneExtra int
	// MaxPacketSize caps the total size a received header may advertise.
	MaxPacketSize int
	Pool          *utils.BufferPool
	Logger        zerolog.Logger
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		InitialCapacity: DefaultInitialCapacity,
		Slack:           DefaultSlack,
		CloneExtra:      DefaultCloneExtra,
		MaxPacketSize:   DefaultMaxPacketSize,
		Pool:            utils.Default,
		Logger:          zerolog.Nop(),
	}
}

func WithInitialCapacity(n int) Option {
	return func(o *Options) { o.InitialCapacity = n }
}

func WithSlack(n int) Option {
	return func(o *Options) { o.Slack = n }
}

func WithCloneExtra(n int) Option {
	return func(o *Options) { o.CloneExtra = n }
}

func WithMaxPacketSize(n int) Option {
	return func(o *Options) { o.MaxPacketSize = n }
}

func WithPool(bp *utils.BufferPool) Option {
	return func(o *Options) { o.Pool = bp }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces every setting at once, e.g. with values loaded from config.
func WithOptions(src Options) Option {
	return func(o *Options) { *o = src }
}

func buildOptions(opts []Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.InitialCapacity < 0 {
		o.InitialCapacity = DefaultInitialCapacity
	}
	if o.Slack < 0 {
		o.Slack = 0
	}
	if o.CloneExtra < 0 {
		o.CloneExtra = DefaultCloneExtra
	}
	if o.MaxPacketSize <= 0 {
		o.MaxPacketSize = DefaultMaxPacketSize
	}
	if o.Pool == nil {
		o.Pool = utils.Default
	}
	return &o
}
