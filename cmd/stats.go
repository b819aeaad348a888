/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/christiemegill/social-media-analysis/dataset"
	"github.com/christiemegill/social-media-analysis/stats"
)

// statsCmd represents the stats command
func statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Aggregate a collected dataset",
		Description: `Reads a dataset produced by the collect command and prints the
engagement aggregates as a JSON document: totals, averages, grouping
by hour of day, weekday and media type, and the top posts by
engagement.

Prints the document to stdout and all log messages to stderr, so the
output can be piped to a tool like jq.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"f"},
				Value:   "dataset.json",
				Usage:   "Path of the dataset to aggregate",
				EnvVars: []string{"ANALYSIS_INPUT"},
			},
			&cli.IntFlag{
				Name:    "top",
				Value:   stats.DefaultTopN,
				Usage:   "Number of posts in the top engagement table",
				EnvVars: []string{"ANALYSIS_TOP"},
			},
		},
		Action: func(ctx *cli.Context) error {
			// Keep stdout clean for the JSON document
			log.SetOutput(os.Stderr)

			ds, err := dataset.LoadJSON(ctx.String("input"))
			if err != nil {
				return err
			}

			overview := stats.Compute(ds.All(), ctx.Int("top"))

			out, err := json.MarshalIndent(overview, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode overview: %w", err)
			}

			fmt.Println(string(out))
			return nil
		},
	}
}
