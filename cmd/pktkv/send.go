package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/quickwritereader/packetkv/config"
	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/transport"
	"github.com/spf13/cobra"
)

func newSendCmd(a *app) *cobra.Command {
	var network, address string
	cmd := &cobra.Command{
		Use:   "send [file]",
		Short: "Send packets from a file or stdin to a peer",
		Long: `Send reads concatenated packets and forwards each one to the configured
peer. Stream networks (tcp, unix) carry packets back to back; datagram
networks (udp, unixgram) carry one packet per datagram.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := a.cfg.Transport
			if network != "" {
				tc.Network = network
			}
			if address != "" {
				tc.Address = address
			}

			in, closeIn, err := openInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			defer closeIn()

			sender, closeSender, err := a.dial(cmd.Context(), tc)
			if err != nil {
				return err
			}
			defer closeSender()

			sr := transport.NewStreamReceiver(in,
				transport.WithReadBufferSize(tc.ReadBufferSize),
				transport.WithPacketOptions(a.cfg.PacketOptions(a.logger)...),
				transport.WithLogger(a.logger),
			)
			sent := 0
			err = sr.Each(func(p *packet.Packet) error {
				if err := transport.Send(sender, p); err != nil {
					return err
				}
				sent++
				return nil
			})
			a.logger.Info().Int("packets", sent).Str("network", tc.Network).Str("address", tc.Address).Msg("send done")
			return err
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "override transport.network (tcp, udp, unix, unixgram)")
	cmd.Flags().StringVar(&address, "address", "", "override transport.address")
	return cmd
}

// dial connects a Sender for tc. The returned func closes every layer.
func (a *app) dial(ctx context.Context, tc config.TransportConfig) (transport.Sender, func(), error) {
	timeout, err := tc.DialTimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	opts := []transport.Option{transport.WithLogger(a.logger)}

	if tc.Datagram() {
		raddr, err := resolveDatagram(tc)
		if err != nil {
			return nil, nil, err
		}
		local := ""
		if tc.Network == "udp" {
			local = ":0"
		}
		conn, err := net.ListenPacket(tc.Network, local)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s socket: %w", tc.Network, err)
		}
		return transport.NewDatagramSender(conn, raddr, opts...), func() { _ = conn.Close() }, nil
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, tc.Network, tc.Address)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s %s: %w", tc.Network, tc.Address, err)
	}
	a.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connected")

	writeTimeout, err := tc.WriteTimeoutDuration()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	var w io.Writer = conn
	if writeTimeout > 0 {
		w = deadlineWriter{conn: conn, timeout: writeTimeout}
	}
	closeAll := func() { _ = conn.Close() }
	if tc.Compress {
		enc, err := transport.NewZstdWriter(w, transport.ZstdLevel("default"))
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		w = enc
		closeAll = func() {
			_ = enc.Close()
			_ = conn.Close()
		}
	}
	return transport.NewStreamSender(w, opts...), closeAll, nil
}

// deadlineWriter pushes the write deadline forward before every write.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
}

func (d deadlineWriter) Write(b []byte) (int, error) {
	if err := d.conn.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	return d.conn.Write(b)
}

func resolveDatagram(tc config.TransportConfig) (net.Addr, error) {
	switch tc.Network {
	case "udp", "udp4", "udp6":
		addr, err := net.ResolveUDPAddr(tc.Network, tc.Address)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", tc.Address, err)
		}
		return addr, nil
	default:
		return &net.UnixAddr{Name: tc.Address, Net: tc.Network}, nil
	}
}
