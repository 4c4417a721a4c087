// ABOUTME: CLI entry point for detach with terminal crash recovery
// ABOUTME: Parses flags, loads config, runs the child under the overlay, propagates its exit code

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/mauromedda/detach/internal/config"
	"github.com/mauromedda/detach/internal/coordinator"
	"github.com/mauromedda/detach/internal/log"
	"github.com/mauromedda/detach/internal/session"
	"github.com/mauromedda/detach/internal/terminal"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	exitUsage         = 2
	exitNotExecutable = 126
	exitNotFound      = 127
)

func main() {
	args := parseFlags()

	if args.version {
		fmt.Printf("detach %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cmdline := args.remaining()
	if len(cmdline) == 0 {
		fmt.Fprintln(os.Stderr, "detach: missing command")
		flag.Usage()
		os.Exit(exitUsage)
	}

	code, err := run(args, cmdline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "detach: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
	os.Exit(code)
}

// run loads configuration, sets up the host terminal, and drives one
// coordinator session. The returned code is the child's exit code.
func run(args cliArgs, cmdline []string) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, err
	}
	if args.height > 0 {
		cfg.Height = args.height
	}
	if args.fps > 0 {
		cfg.FPS = args.fps
	}
	if args.verbose || cfg.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	host := terminal.NewProcessHost()
	defer terminal.RestoreOnPanic(host)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	co := coordinator.New(coordinator.Options{
		Command:   cmdline[0],
		Args:      cmdline[1:],
		MaxHeight: cfg.Height,
		Interval:  cfg.Interval(),
		Host:      host,
		Input:     os.Stdin,
	})
	return co.Run(ctx)
}

// exitCodeFor maps failures to the shell's spawn-error conventions:
// 127 for a missing command, 126 for one that cannot be executed.
func exitCodeFor(err error) int {
	var spawnErr *session.SpawnError
	if errors.As(err, &spawnErr) {
		if errors.Is(err, exec.ErrNotFound) {
			return exitNotFound
		}
		if errors.Is(err, os.ErrPermission) {
			return exitNotExecutable
		}
	}
	return 1
}
