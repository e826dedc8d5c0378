// Command boxjoint carves box-joint designs outside the desktop app: it
// exports carved boards as STL, validates joints and prints segment
// layouts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/boxjoint/internal/config"
	"github.com/chazu/boxjoint/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	v := config.New()
	a := &app{logger: zap.NewNop()}
	var cfgFile string

	root := &cobra.Command{
		Use:           "boxjoint",
		Short:         "Design and carve box joints",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	fs := root.PersistentFlags()
	fs.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	if err := config.BindFlags(v, fs); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}

	root.AddCommand(
		newCarveCmd(a),
		newValidateCmd(a),
		newSegmentsCmd(),
		newConvertCmd(a),
	)
	return root
}
