/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/input"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/christiemegill/social-media-analysis/bluesky"
	"github.com/christiemegill/social-media-analysis/collector"
	"github.com/christiemegill/social-media-analysis/config"
	"github.com/christiemegill/social-media-analysis/dataset"
)

// collectCmd represents the collect command
func collectCmd() *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Collect posts from a set of Bluesky accounts",
		Description: `Authenticates against the PDS with an app password, resolves each
configured handle to its DID and pages through the author feeds at a
fixed pace until the requested number of posts is collected per account.

The normalized posts are written to a JSON dataset file, and optionally
to a CSV file, for the stats and report commands to consume.

Accounts come from the config file or from repeated --account flags.
Credentials are prompted for when not passed via flag or environment.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "identifier",
				Aliases: []string{"i"},
				Usage:   "Handle or email to authenticate as",
				EnvVars: []string{"BSKY_IDENTIFIER"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "App password, prompted for when not set",
				EnvVars: []string{"BSKY_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   bluesky.DefaultPDSHost,
				Usage:   "PDS host to talk to",
				EnvVars: []string{"ANALYSIS_HOST"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "accounts.toml",
				Usage:   "Path to the accounts configuration file",
				EnvVars: []string{"ANALYSIS_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:    "account",
				Aliases: []string{"a"},
				Usage:   "Account handle to collect, repeatable, overrides the config file",
				EnvVars: []string{"ANALYSIS_ACCOUNT"},
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Value:   200,
				Usage:   "Number of posts to collect per account",
				EnvVars: []string{"ANALYSIS_LIMIT"},
			},
			&cli.IntFlag{
				Name:    "page-size",
				Value:   collector.DefaultPageSize,
				Usage:   "Feed page size, capped at 100 by the server",
				EnvVars: []string{"ANALYSIS_PAGE_SIZE"},
			},
			&cli.DurationFlag{
				Name:    "page-delay",
				Value:   collector.DefaultPageDelay,
				Usage:   "Fixed pause between feed requests",
				EnvVars: []string{"ANALYSIS_PAGE_DELAY"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "dataset.json",
				Usage:   "Path of the JSON dataset export",
				EnvVars: []string{"ANALYSIS_OUTPUT"},
			},
			&cli.StringFlag{
				Name:    "csv",
				Usage:   "Path of an optional CSV export",
				EnvVars: []string{"ANALYSIS_CSV"},
			},
		},
		Action: func(ctx *cli.Context) error {
			handles := ctx.StringSlice("account")
			output := ctx.String("output")
			csvPath := ctx.String("csv")

			runCfg := collector.Config{
				Limit:     ctx.Int("limit"),
				PageSize:  ctx.Int("page-size"),
				PageDelay: ctx.Duration("page-delay"),
			}

			// The config file fills in whatever the flags did not set. It is
			// optional as long as the accounts come in via --account.
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				if ctx.IsSet("config") || len(handles) == 0 {
					return fmt.Errorf("failed to load config: %w", err)
				}
			} else {
				if len(handles) == 0 {
					handles = cfg.Handles()
				}
				if !ctx.IsSet("limit") && cfg.Collect.Limit > 0 {
					runCfg.Limit = cfg.Collect.Limit
				}
				if !ctx.IsSet("page-size") && cfg.Collect.PageSize > 0 {
					runCfg.PageSize = cfg.Collect.PageSize
				}
				if !ctx.IsSet("page-delay") && cfg.Collect.DelayMs > 0 {
					runCfg.PageDelay = time.Duration(cfg.Collect.DelayMs) * time.Millisecond
				}
				if cfg.Collect.MaxRounds > 0 {
					runCfg.MaxRounds = cfg.Collect.MaxRounds
				}
				if !ctx.IsSet("output") && cfg.Collect.Output != "" {
					output = cfg.Collect.Output
				}
				if csvPath == "" {
					csvPath = cfg.Collect.CSV
				}
			}

			if len(handles) == 0 {
				return errors.New("no accounts to collect, add them to the config file or pass --account")
			}

			identifier := ctx.String("identifier")
			if identifier == "" {
				identifier, err = prompt.New().Ask("Handle:").Input("myname.bsky.social")
				if err != nil {
					return err
				}
			}

			password := ctx.String("password")
			if password == "" {
				password, err = prompt.New().Ask("Password:").Input("", input.WithEchoMode(input.EchoNone))
				if err != nil {
					return err
				}
			}

			client, err := bluesky.ClientFromCredentials(ctx.Context, ctx.String("host"), &bluesky.Credentials{
				Identifier: identifier,
				Password:   password,
			})
			if err != nil {
				return fmt.Errorf("could not create client with provided credentials: %w", err)
			}

			log.WithFields(log.Fields{
				"handle": client.Session().Handle,
				"did":    client.Session().Did,
			}).Info("Authenticated")

			ds := dataset.New()
			c := collector.New(client, ds, runCfg)

			if err := c.Collect(ctx.Context, handles); err != nil {
				return err
			}

			if err := ds.WriteJSON(output); err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"posts":   ds.Count(),
				"skipped": ds.Skipped(),
				"output":  output,
			}).Info("Dataset written")

			if csvPath != "" {
				if err := ds.WriteCSV(csvPath); err != nil {
					return err
				}
				log.WithFields(log.Fields{
					"output": csvPath,
				}).Info("CSV written")
			}

			return nil
		},
	}
}
