package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jmleung/deltamail/internal/config"
	"github.com/jmleung/deltamail/internal/journal"
	"github.com/jmleung/deltamail/internal/logging"
	"github.com/jmleung/deltamail/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "deltamail",
		Usage:   "Notify contacts about records new in the latest snapshot export",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to YAML config file"},
		},
		Commands: []*cli.Command{
			runCmd(),
			previewCmd(),
			draftsCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runCmd creates the run command: the full compare-group-send pipeline.
func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Compare the two latest snapshots and mail contacts of new records",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			log, closeLog, err := logging.Init(cfg.LogDir, logging.ParseLevel(cfg.LogLevel))
			if err != nil {
				return err
			}
			defer closeLog()

			deps := ops.RunDeps{}
			if cfg.JournalPath != "" {
				j, err := journal.Open(cfg.JournalPath)
				if err != nil {
					log.Error("failed to open journal", slog.Any("error", err))
					return err
				}
				defer j.Close()
				deps.Journal = j
			}

			out, err := ops.Run(c.Context, cfg, log, deps)
			if err != nil {
				log.Error("run failed", slog.Any("error", err))
				return err
			}
			return outputJSON(out)
		},
	}
}

// previewCmd creates the preview command: a dry run that sends nothing.
func previewCmd() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Show the novelty set and contact groups without sending",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			log, closeLog, err := logging.Init(cfg.LogDir, logging.ParseLevel(cfg.LogLevel))
			if err != nil {
				return err
			}
			defer closeLog()

			out, err := ops.Preview(cfg, log)
			if err != nil {
				log.Error("preview failed", slog.Any("error", err))
				return err
			}
			return outputJSON(out)
		},
	}
}

// draftsCmd creates the drafts command: lists pending fallback drafts.
func draftsCmd() *cli.Command {
	return &cli.Command{
		Name:  "drafts",
		Usage: "List undelivered drafts in the fallback directory",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			out, err := ops.Drafts(cfg)
			if err != nil {
				return err
			}
			return outputJSON(out)
		},
	}
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
