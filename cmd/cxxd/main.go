// Command cxxd is the daemon's entry point: an urfave/cli app exposing a
// `serve` command (the Outer Boundary, spec.md §4.8) and a hidden
// `index-chunk` command the Indexer Engine re-execs itself as for its
// process-based fan-out (spec §4.3, §5; SPEC_FULL.md CONCURRENCY MAPPING).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "cxxd",
		Usage: "C/C++ source-intelligence daemon",
		Commands: []*cli.Command{
			serveCommand,
			indexChunkCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
