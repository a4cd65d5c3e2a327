package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jbakamovic/cxxd/internal/indexer"
)

// indexChunkCommand is the hidden child-process entry point the Indexer
// Engine's fan-out re-execs itself as (spec §4.3 "Fan-out"; §5
// "Scheduling"; internal/indexer/child.go's spawnChild).
var indexChunkCommand = &cli.Command{
	Name:   indexer.IndexChunkSubcommand,
	Hidden: true,
	Usage:  "Index one fan-out chunk into its own private store (internal)",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "root", Required: true},
		&cli.StringFlag{Name: "flags"},
		&cli.StringFlag{Name: "input-list", Required: true},
		&cli.StringFlag{Name: "output-store", Required: true},
		&cli.StringFlag{Name: "log", Required: true},
	},
	Action: runIndexChunk,
}

func runIndexChunk(c *cli.Context) error {
	if err := indexer.RunIndexChunk(c.String("root"), c.String("input-list"), c.String("output-store"), c.String("log")); err != nil {
		return fmt.Errorf("index-chunk: %w", err)
	}
	return nil
}
