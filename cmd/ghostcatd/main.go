// Command ghostcatd is the D-Bus session daemon that mediates
// configuration of gaming mice and other configurable HID peripherals.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/ghostcat-linux/ghostcatd/internal/daemon"
)

// version is stamped at build time via -ldflags; "dev" is the fallback
// for a plain `go build`.
var version = "dev"

// Exit codes. The "already running" code is kept distinct from a
// generic startup failure so a launching service manager can tell the
// two apart (e.g. to not flap-restart on the former).
const (
	exitOK             = 0
	exitUsage          = 2
	exitAlreadyRunning = 3
	exitStartupFailure = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ghostcatd", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	showVersion := fs.Bool("version", false, "print the version and exit")
	quiet := fs.Bool("quiet", false, "log only warnings and errors")
	verbose := fs.String("verbose", "", `increase log verbosity: "raw" (debug, with source locations; also a bare --verbose) or "debug"`)

	// A bare --verbose selects the "raw" level.
	args = append([]string(nil), args...)
	for i, a := range args {
		if a == "--verbose" || a == "-verbose" {
			args[i] = "--verbose=raw"
		}
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *showVersion {
		fmt.Println("ghostcatd", version)
		return exitOK
	}

	log := newLogger(*quiet, *verbose)

	d, err := daemon.New(log)
	if err != nil {
		if isAlreadyRunning(err) {
			log.Error("ghostcatd is already running on this session bus")
			return exitAlreadyRunning
		}
		log.Error("startup failed", "error", err)
		return exitStartupFailure
	}
	defer d.Close()

	if err := d.Run(context.Background()); err != nil {
		log.Error("daemon exited with an error", "error", err)
		return exitStartupFailure
	}
	return exitOK
}

func newLogger(quiet bool, verbose string) hclog.Logger {
	level := hclog.Info
	includeLocation := false
	switch {
	case quiet:
		level = hclog.Warn
	case verbose == "debug":
		level = hclog.Debug
	case verbose == "raw":
		level = hclog.Debug
		includeLocation = true
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            "ghostcatd",
		Level:           level,
		IncludeLocation: includeLocation,
	})
}

// isAlreadyRunning reports whether err is the bus-name-taken failure
// daemon.New returns when another ghostcatd instance already owns the
// well-known name. Matched by substring since the error crosses a
// godbus RequestName call and isn't one of our own sentinel types.
func isAlreadyRunning(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already running")
}
