// Command veloxy is the CLI entrypoint for the configuration
// subsystem: it loads, migrates, and validates the on-disk config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.minekube.com/veloxy/internal/util/console"
	"go.minekube.com/veloxy/pkg/config"
)

func main() {
	app := &cli.App{
		Name:  "veloxy",
		Usage: "configuration tooling for the veloxy proxy",
		Commands: []*cli.Command{
			configCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Load, migrate, and validate the proxy configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Path to the configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Watch the configuration file and reload on change",
			},
		},
		Action: func(c *cli.Context) error {
			log := newLogger(c.Bool("debug"))
			path := c.String("path")

			store, err := config.Read(path, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error loading config: %v", err), 1)
			}
			log.Info("configuration loaded", "bind", store.Config().Bind, "configVersion", store.Config().ConfigVersion)
			fmt.Println(console.AnsiFromLegacy(store.Config().Motd))

			if !c.Bool("watch") {
				return nil
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
			defer func() { signal.Stop(sig); close(sig) }()
			go func() {
				s, ok := <-sig
				if !ok {
					return
				}
				log.Info("received signal", "signal", s.String())
				cancel()
			}()

			return config.Watch(ctx, path, log, func(s *config.Store) {
				store = s
			})
		},
	}
}

func newLogger(debug bool) logr.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(l)
}
