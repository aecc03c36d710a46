package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[packet]
initial_capacity = 256
max_packet_size = 65536

[transport]
network = "udp"
address = "127.0.0.1:9999"
compress = true
write_timeout = "250ms"

[log]
level = "debug"
json = true
`))
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Packet.InitialCapacity)
	assert.Equal(t, packet.DefaultSlack, cfg.Packet.Slack, "unset keys keep defaults")
	assert.Equal(t, 65536, cfg.Packet.MaxPacketSize)
	assert.True(t, cfg.Transport.Datagram())
	assert.True(t, cfg.Transport.Compress)
	assert.Equal(t, 4096, cfg.Transport.ReadBufferSize)

	d, err := cfg.Transport.WriteTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	lc := cfg.LoggerConfig()
	assert.Equal(t, zerolog.DebugLevel, lc.Level)
	assert.True(t, lc.JSON)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "[packet]\nbogus = 1\n",
		"bad network":   "[transport]\nnetwork = \"carrier-pigeon\"\n",
		"bad duration":  "[transport]\ndial_timeout = \"soon\"\n",
		"negative":      "[packet]\nslack = -1\n",
		"zero max":      "[packet]\nmax_packet_size = 0\n",
		"bad level":     "[log]\nlevel = \"shout\"\n",
		"invalid toml":  "[packet\n",
		"empty address": "[transport]\naddress = \"  \"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pktkv.toml")
	require.NoError(t, os.WriteFile(path, []byte("[transport]\naddress = \"127.0.0.1:1\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1", cfg.Transport.Address)
	assert.Equal(t, "tcp", cfg.Transport.Network)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPacketOptions(t *testing.T) {
	cfg := Default()
	cfg.Packet.InitialCapacity = 64
	cfg.Packet.MaxPacketSize = 128

	r := packet.NewReceiver(cfg.PacketOptions(zerolog.Nop())...)
	header := []byte{1, 0, 0, 0, 0, 1, 0, 0} // keysOffset 256 > 128
	_, err := r.Append(header)
	assert.ErrorIs(t, err, packet.ErrInvalidHeader)

	p := packet.New(cfg.PacketOptions(zerolog.Nop())...)
	assert.Equal(t, 64, p.Cap())
}
