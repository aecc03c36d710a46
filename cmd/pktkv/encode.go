package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/quickwritereader/packetkv/packet"
	"github.com/quickwritereader/packetkv/scheme"
	"github.com/quickwritereader/packetkv/utils"
	"github.com/spf13/cobra"
)

// valuesAPI keeps JSON numbers exact until a scheme picks their width.
var valuesAPI = jsoniter.Config{UseNumber: true}.Froze()

func newEncodeCmd(a *app) *cobra.Command {
	var (
		schemePath string
		jsonValues string
		sets       []string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode field values into a packet",
		Long: `Encode builds one finalized packet and writes its bytes.

Values come from a JSON object (--json) and key=value strings (--set). With
--scheme the JSON values are encoded and validated with the declared field
types; without it strings, booleans and numbers are stored as strings, bools,
int64 or float64.

Examples:
  pktkv encode --set name=gopher --set zone=eu-west -o hello.pkt
  pktkv encode --scheme telemetry.json --json '{"type": 6654, "key1": "x"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]any{}
			if jsonValues != "" {
				if err := valuesAPI.UnmarshalFromString(jsonValues, &values); err != nil {
					return fmt.Errorf("parse --json: %w", err)
				}
			}
			for _, kv := range sets {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("--set %q: want key=value", kv)
				}
				values[k] = v
			}

			opts := a.cfg.PacketOptions(a.logger)
			var (
				p   *packet.Packet
				err error
			)
			if schemePath != "" {
				fields, lerr := scheme.LoadSchemeFile(schemePath)
				if lerr != nil {
					return lerr
				}
				p, err = fields.EncodePacket(values, opts...)
			} else {
				p, err = encodeUntyped(values, opts...)
			}
			if err != nil {
				return err
			}

			data, err := p.Bytes()
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), outPath, data); err != nil {
				return err
			}
			a.logger.Debug().Int("size", len(data)).Int("keys", p.NumKeys()).Msg("packet encoded")
			return nil
		},
	}
	cmd.Flags().StringVar(&schemePath, "scheme", "", "JSON packet scheme describing the fields")
	cmd.Flags().StringVar(&jsonValues, "json", "", "JSON object of field values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "string field as key=value (repeatable)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func encodeUntyped(values map[string]any, opts ...packet.Option) (*packet.Packet, error) {
	p := packet.New(opts...)
	for _, k := range utils.SortedKeys(values) {
		var err error
		switch v := values[k].(type) {
		case string:
			err = p.PutString(k, v)
		case bool:
			err = packet.PutValue(p, k, v)
		case json.Number:
			if i, ierr := v.Int64(); ierr == nil {
				err = p.PutInt64(k, i)
			} else if f, ferr := v.Float64(); ferr == nil {
				err = packet.PutValue(p, k, f)
			} else {
				err = fmt.Errorf("field %q: bad number %s", k, v)
			}
		case nil:
			continue
		default:
			err = fmt.Errorf("field %q: %T values need a scheme", k, v)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := p.Finalize(); err != nil {
		return nil, err
	}
	return p, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
