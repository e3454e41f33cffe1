package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "purgectl",
		Usage: "derive, check and purge attachment objects in the media bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file (defaults to environment and .env)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "keys",
				Usage:  "print the object keys for an attachment without touching the bucket",
				Flags:  append(metadataFlags(), &cli.StringFlag{Name: "base-path", Usage: "override the configured base path"}),
				Action: runKeys,
			},
			{
				Name:  "purge",
				Usage: "delete an attachment and its variants with one batch request",
				Flags: append(metadataFlags(), &cli.StringFlag{
					Name:  "id",
					Value: "cli",
					Usage: "attachment id used in logs",
				}),
				Action: runPurge,
			},
			{
				Name:   "check",
				Usage:  "report which of an attachment's keys still exist",
				Flags:  metadataFlags(),
				Action: runCheck,
			},
		},
	}
}

func metadataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "metadata",
			Aliases:  []string{"m"},
			Required: true,
			Usage:    "attachment metadata JSON file, or - for stdin",
		},
	}
}
