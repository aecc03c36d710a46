package main

import (
	"fmt"

	"github.com/quickwritereader/packetkv/config"
	"github.com/quickwritereader/packetkv/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "pktkv",
		Short: "Build, inspect and move key-value packets",
		Long: `pktkv works with self-describing binary key-value packets: a payload of
raw field bytes followed by a directory of {hash, offset, length} entries.

It can encode packets from JSON, dump their layout, and send or receive them
over TCP, UDP or unix sockets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")

	root.AddCommand(
		newEncodeCmd(a),
		newInspectCmd(a),
		newSendCmd(a),
		newListenCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	lc := a.cfg.LoggerConfig()
	logging.ApplyEnvOverrides(&lc)
	if a.logLevel != "" {
		lvl, ok := logging.ParseLevel(a.logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", a.logLevel)
		}
		lc.Level = lvl
	}
	a.logger = logging.New(lc).With().Str("app", "pktkv").Logger()
	return nil
}
