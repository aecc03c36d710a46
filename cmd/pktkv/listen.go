package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/quickwritereader/packetkv/config"
	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/scheme"
	"github.com/quickwritereader/packetkv/transport"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newListenCmd(a *app) *cobra.Command {
	var (
		network, address string
		schemePath       string
		count            int
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive packets and print them",
		Long: `Listen accepts packets on the configured address and prints each one like
inspect does. Stream listeners serve every connection concurrently. Use
--count to stop after a number of packets; otherwise run until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := a.cfg.Transport
			if network != "" {
				tc.Network = network
			}
			if address != "" {
				tc.Address = address
			}
			l := &listener{app: a, tc: tc, out: cmd.OutOrStdout(), limit: count}
			if schemePath != "" {
				f, err := scheme.LoadSchemeFile(schemePath)
				if err != nil {
					return err
				}
				l.fields = &f
			}
			return l.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "override transport.network (tcp, udp, unix, unixgram)")
	cmd.Flags().StringVar(&address, "address", "", "override transport.address")
	cmd.Flags().StringVar(&schemePath, "scheme", "", "JSON packet scheme used to decode fields")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many packets (0 means no limit)")
	return cmd
}

var errLimitReached = errors.New("packet limit reached")

type listener struct {
	*app
	tc     config.TransportConfig
	out    io.Writer
	fields *scheme.SchemeFields
	limit  int

	mu   sync.Mutex
	seen int

	// ready, when set, receives the bound address once the socket is open.
	ready func(net.Addr)
}

// handle prints p and reports errLimitReached once enough packets were seen.
func (l *listener) handle(p *packet.Packet, from string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limit > 0 && l.seen >= l.limit {
		return errLimitReached
	}
	l.seen++
	l.logger.Debug().Str("from", from).Int("size", p.Size()).Msg("packet")
	if err := printPacket(l.out, p, l.fields); err != nil {
		l.logger.Warn().Err(err).Str("from", from).Msg("cannot print packet")
	}
	if l.limit > 0 && l.seen >= l.limit {
		return errLimitReached
	}
	return nil
}

func (l *listener) run(ctx context.Context) error {
	var err error
	if l.tc.Datagram() {
		err = l.runDatagram(ctx)
	} else {
		err = l.runStream(ctx)
	}
	if errors.Is(err, errLimitReached) || errors.Is(err, context.Canceled) {
		l.logger.Info().Int("packets", l.seen).Msg("listener stopped")
		return nil
	}
	return err
}

func (l *listener) runDatagram(ctx context.Context) error {
	conn, err := net.ListenPacket(l.tc.Network, l.tc.Address)
	if err != nil {
		return fmt.Errorf("listen %s %s: %w", l.tc.Network, l.tc.Address, err)
	}
	defer conn.Close()
	l.logger.Info().Str("network", l.tc.Network).Str("address", conn.LocalAddr().String()).Msg("listening")
	if l.ready != nil {
		l.ready(conn.LocalAddr())
	}

	rx := transport.NewDatagramReceiver(conn,
		transport.WithPacketOptions(l.cfg.PacketOptions(l.logger)...),
		transport.WithLogger(l.logger),
	)
	for {
		p, from, release, err := rx.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn().Err(err).Msg("dropping datagram")
			continue
		}
		herr := l.handle(p, from.String())
		release()
		if herr != nil {
			return herr
		}
	}
}

func (l *listener) runStream(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, l.tc.Network, l.tc.Address)
	if err != nil {
		return fmt.Errorf("listen %s %s: %w", l.tc.Network, l.tc.Address, err)
	}
	l.logger.Info().Str("network", l.tc.Network).Str("address", ln.Addr().String()).Msg("listening")
	if l.ready != nil {
		l.ready(ln.Addr())
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	eg.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("accept: %w", err)
			}
			eg.Go(func() error {
				return l.serveConn(ctx, conn)
			})
		}
	})
	return eg.Wait()
}

func (l *listener) serveConn(ctx context.Context, conn net.Conn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	from := conn.RemoteAddr().String()
	var in io.Reader = conn
	if l.tc.Compress {
		dec, err := transport.NewZstdReader(conn)
		if err != nil {
			return err
		}
		defer dec.Close()
		in = dec
	}

	sr := transport.NewStreamReceiver(in,
		transport.WithReadBufferSize(l.tc.ReadBufferSize),
		transport.WithPacketOptions(l.cfg.PacketOptions(l.logger)...),
		transport.WithLogger(l.logger),
	)
	err := sr.Each(func(p *packet.Packet) error {
		defer p.Release()
		return l.handle(p, from)
	})
	switch {
	case errors.Is(err, errLimitReached):
		return err
	case err != nil && ctx.Err() == nil:
		l.logger.Warn().Err(err).Str("from", from).Msg("connection dropped")
	}
	return nil
}
