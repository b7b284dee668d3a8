package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/govdocs/harvester/internal/manifests"
	"github.com/govdocs/harvester/internal/run"
	"github.com/govdocs/harvester/internal/runs"
)

func main() {
	app := &cli.App{
		Name:  "harvester",
		Usage: "enrich, dedup, and download document items emitted by site crawlers",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "process an item feed through the download pipeline",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Usage:    "crawler config YAML",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "items",
						Usage: "newline-delimited JSON item feed ('-' for stdin)",
						Value: "-",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "override the configured output directory",
					},
					&cli.StringFlag{
						Name:  "previous-manifest",
						Usage: "override the configured cumulative manifest path",
					},
					&cli.BoolFlag{
						Name:  "dont-filter-previous-hashes",
						Usage: "disable previous-hash filtering (everything is downloaded)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "override the configured worker count",
					},
					&cli.StringFlag{
						Name:  "db",
						Usage: "bookkeeping database path (default: <output-dir>/harvester.db)",
					},
					&cli.BoolFlag{
						Name:  "no-db",
						Usage: "disable run bookkeeping",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
				Action: run.RunAction,
			},
			{
				Name:  "runs",
				Usage: "list past runs from the bookkeeping database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Usage:    "bookkeeping database path",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "max rows to show",
						Value: 20,
					},
				},
				Action: runs.RunsAction,
			},
			{
				Name:  "manifest-stats",
				Usage: "show per-crawler record counts for a cumulative manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path",
						Usage:    "manifest file path",
						Required: true,
					},
				},
				Action: manifests.StatsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
