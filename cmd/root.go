/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "social-media-analysis",
		Usage: "Collect and analyze Bluesky posts per account",
		Description: `Collects posts from a set of Bluesky accounts through the public
		AT Protocol HTTP API and normalizes them into a flat engagement
		schema for analysis.

		Collection authenticates with an app password, resolves each handle
		to its DID, then pages through the author feeds at a fixed pace.
		The collected dataset is written to JSON (and optionally CSV) and
		can be aggregated or rendered as an HTML report afterwards.

		Flags can generally be set via environment variables, e.g.:

		--identifier => BSKY_IDENTIFIER=myname.bsky.social
		--limit => ANALYSIS_LIMIT=200
		`,
		Commands: []*cli.Command{
			collectCmd(),
			statsCmd(),
			reportCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
