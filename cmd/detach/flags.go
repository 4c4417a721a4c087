// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --height, --fps, --verbose, --version; remaining args are the child command

package main

import (
	"flag"
	"fmt"
	"os"
)

type cliArgs struct {
	height  int
	fps     int
	verbose bool
	version bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.IntVar(&args.height, "height", 0, "Overlay height cap in rows (overrides config)")
	flag.IntVar(&args.fps, "fps", 0, "Render rate in frames per second (overrides config)")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging to stderr")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: detach [flags] <command> [args...]\n\nFlags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return args
}

// remaining returns the non-flag command-line arguments: the child command
// and its arguments.
func (a cliArgs) remaining() []string {
	return flag.Args()
}
