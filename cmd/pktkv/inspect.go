package main

import (
	"fmt"
	"io"
	"os"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/scheme"
	"github.com/quickwritereader/packetkv/transport"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		schemePath string
		zstdInput  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the layout or decoded fields of packets",
		Long: `Inspect reads one or more concatenated packets from a file or stdin.

Without --scheme every packet is printed as a JSON layout dump: header values
and one entry per directory record. With --scheme the fields are validated and
printed as a JSON object in scheme order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields *scheme.SchemeFields
			if schemePath != "" {
				f, err := scheme.LoadSchemeFile(schemePath)
				if err != nil {
					return err
				}
				fields = &f
			}

			in, closeIn, err := openInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			defer closeIn()

			if zstdInput {
				dec, err := transport.NewZstdReader(in)
				if err != nil {
					return err
				}
				defer dec.Close()
				in = dec
			}

			out := cmd.OutOrStdout()
			sr := transport.NewStreamReceiver(in,
				transport.WithReadBufferSize(a.cfg.Transport.ReadBufferSize),
				transport.WithPacketOptions(a.cfg.PacketOptions(a.logger)...),
				transport.WithLogger(a.logger),
			)
			count := 0
			err = sr.Each(func(p *packet.Packet) error {
				defer p.Release()
				count++
				return printPacket(out, p, fields)
			})
			a.logger.Debug().Int("packets", count).Msg("inspect done")
			return err
		},
	}
	cmd.Flags().StringVar(&schemePath, "scheme", "", "JSON packet scheme used to decode fields")
	cmd.Flags().BoolVar(&zstdInput, "zstd", false, "input is a zstd stream")
	return cmd
}

func openInput(stdin io.Reader, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", args[0], err)
	}
	return f, func() { _ = f.Close() }, nil
}

// printPacket writes one JSON line for p: decoded values when fields is set,
// the layout dump otherwise.
func printPacket(w io.Writer, p *packet.Packet, fields *scheme.SchemeFields) error {
	var (
		line []byte
		err  error
	)
	if fields != nil {
		values, derr := fields.DecodePacket(p)
		if derr != nil {
			return derr
		}
		line, err = values.MarshalJSON()
	} else {
		line, err = p.Dump().JSON()
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", line)
	return err
}
