package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/quickwritereader/packetkv/logging"
	"github.com/quickwritereader/packetkv/packet"
	"github.com/rs/zerolog"
)

type Config struct {
	Packet    PacketConfig    `toml:"packet"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
}

type PacketConfig struct {
	InitialCapacity int `toml:"initial_capacity"`
	Slack           int `toml:"slack"`
	CloneExtra      int `toml:"clone_extra"`
	MaxPacketSize   int `toml:"max_packet_size"`
}

type TransportConfig struct {
	Network        string `toml:"network"`
	Address        string `toml:"address"`
	ReadBufferSize int    `toml:"read_buffer_size"`
	Compress       bool   `toml:"compress"`
	DialTimeout    string `toml:"dial_timeout"`
	WriteTimeout   string `toml:"write_timeout"`
}

type LogConfig struct {
	Level   string `toml:"level"`
	JSON    bool   `toml:"json"`
	NoColor bool   `toml:"no_color"`
}

func Default() Config {
	return Config{
		Packet: PacketConfig{
			InitialCapacity: packet.DefaultInitialCapacity,
			Slack:           packet.DefaultSlack,
			CloneExtra:      packet.DefaultCloneExtra,
			MaxPacketSize:   packet.DefaultMaxPacketSize,
		},
		Transport: TransportConfig{
			Network:        "tcp",
			Address:        "127.0.0.1:7400",
			ReadBufferSize: 4096,
			DialTimeout:    "5s",
			WriteTimeout:   "5s",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	p := cfg.Packet
	if p.InitialCapacity < 0 || p.Slack < 0 || p.CloneExtra < 0 {
		return fmt.Errorf("packet sizes must not be negative")
	}
	if p.MaxPacketSize <= 0 {
		return fmt.Errorf("packet max_packet_size must be positive")
	}
	switch cfg.Transport.Network {
	case "tcp", "tcp4", "tcp6", "unix", "udp", "udp4", "udp6", "unixgram":
	default:
		return fmt.Errorf("transport network %q not supported", cfg.Transport.Network)
	}
	if strings.TrimSpace(cfg.Transport.Address) == "" {
		return fmt.Errorf("transport config missing address")
	}
	if cfg.Transport.ReadBufferSize <= 0 {
		return fmt.Errorf("transport read_buffer_size must be positive")
	}
	if _, err := cfg.Transport.DialTimeoutDuration(); err != nil {
		return err
	}
	if _, err := cfg.Transport.WriteTimeoutDuration(); err != nil {
		return err
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok && cfg.Log.Level != "" {
		return fmt.Errorf("log level %q not recognized", cfg.Log.Level)
	}
	return nil
}

// PacketOptions maps the packet section onto packet options.
func (c Config) PacketOptions(logger zerolog.Logger) []packet.Option {
	return []packet.Option{
		packet.WithInitialCapacity(c.Packet.InitialCapacity),
		packet.WithSlack(c.Packet.Slack),
		packet.WithCloneExtra(c.Packet.CloneExtra),
		packet.WithMaxPacketSize(c.Packet.MaxPacketSize),
		packet.WithLogger(logger),
	}
}

// Datagram reports whether the transport network is packet oriented.
func (t TransportConfig) Datagram() bool {
	return strings.HasPrefix(t.Network, "udp") || t.Network == "unixgram"
}

func (t TransportConfig) DialTimeoutDuration() (time.Duration, error) {
	return parseDuration("dial_timeout", t.DialTimeout)
}

func (t TransportConfig) WriteTimeoutDuration() (time.Duration, error) {
	return parseDuration("write_timeout", t.WriteTimeout)
}

func parseDuration(name, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return d, nil
}

// LoggerConfig maps the log section onto a logging configuration.
func (c Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(c.Log.Level); ok {
		cfg.Level = lvl
	}
	cfg.JSON = c.Log.JSON
	cfg.NoColor = c.Log.NoColor
	return cfg
}
