// cmd/blueboat/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// blueboat flies an autonomous surface vessel around generated
// figure-eight patrol routes, either headless or in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/blueboat-sim/blueboat/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds state shared by all of the commands for one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config
	lg      *log.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "blueboat",
		Short:         "Guidance simulator for a surface vessel patrolling a figure-eight route",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: blueboat.yaml in . or the user config dir)")
	flags.String("loglevel", "info", "logging level: debug, info, warn, error")
	flags.String("logdir", "", "directory for log files, or \"-\" for stderr (default: the user config dir)")
	flags.Int64("seed", 0, "random seed for scenario generation; 0 picks one")
	a.v.BindPFlag("log_level", flags.Lookup("loglevel"))
	a.v.BindPFlag("log_dir", flags.Lookup("logdir"))
	a.v.BindPFlag("seed", flags.Lookup("seed"))

	root.AddCommand(
		a.newRunCommand(),
		a.newBatchCommand(),
		a.newRouteCommand(),
		a.newTrackCommand(),
		a.newViewCommand(),
	)

	return root
}

func (a *app) initialize() error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	a.cfg = cfg

	a.lg = log.New(cfg.LogLevel, cfg.LogDir)
	a.lg.Info("configuration", "seed", cfg.Seed, "config_file", a.v.ConfigFileUsed())

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "blueboat:", err)
		os.Exit(1)
	}
}
