/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/christiemegill/social-media-analysis/dataset"
	"github.com/christiemegill/social-media-analysis/report"
	"github.com/christiemegill/social-media-analysis/stats"
)

// reportCmd represents the report command
func reportCmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render an HTML report from a collected dataset",
		Description: `Reads a dataset produced by the collect command, aggregates it and
renders the charts as a single HTML page in the report directory.

With --serve the rendered report is also served over HTTP together
with JSON endpoints for the data behind the charts.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"f"},
				Value:   "dataset.json",
				Usage:   "Path of the dataset to render",
				EnvVars: []string{"ANALYSIS_INPUT"},
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "report",
				Usage:   "Directory the report is rendered into",
				EnvVars: []string{"ANALYSIS_REPORT_DIR"},
			},
			&cli.IntFlag{
				Name:    "top",
				Value:   stats.DefaultTopN,
				Usage:   "Number of posts in the top engagement table",
				EnvVars: []string{"ANALYSIS_TOP"},
			},
			&cli.BoolFlag{
				Name:    "serve",
				Usage:   "Serve the rendered report over HTTP",
				EnvVars: []string{"ANALYSIS_SERVE"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8080,
				Usage:   "Port to serve the report on",
				EnvVars: []string{"ANALYSIS_PORT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			ds, err := dataset.LoadJSON(ctx.String("input"))
			if err != nil {
				return err
			}

			posts := ds.All()
			overview := stats.Compute(posts, ctx.Int("top"))

			path, err := report.Render(ctx.String("dir"), overview)
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"path":  path,
				"posts": len(posts),
			}).Info("Report rendered")

			if !ctx.Bool("serve") {
				return nil
			}

			app := report.Viewer(ctx.String("dir"), overview, posts)

			// Graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)

			go func() {
				<-quit
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
					log.Errorf("failed to shut down server: %s", err)
				}
			}()

			return app.Listen(fmt.Sprintf(":%d", ctx.Int("port")))
		},
	}
}
