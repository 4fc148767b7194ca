// Command depth inspects environment depth reprojection: it computes the
// per-frame matrices for a captured frame descriptor, casts passthrough
// camera rays, evaluates depth band statistics, and records or replays
// depth sessions in SQLite.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/depth.report/internal/config"
	"github.com/banshee-data/depth.report/internal/version"
)

// errUsage marks errors already reported together with usage text.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	command, rest := args[0], args[1:]

	var err error
	switch command {
	case "reproject":
		err = handleReproject(rest, stdout)
	case "ray":
		err = handleRay(rest, stdout)
	case "stats":
		err = handleStats(rest, stdout)
	case "simulate":
		err = handleSimulate(rest, stdout)
	case "replay":
		err = handleReplay(rest, stdout)
	case "migrate":
		err = handleMigrate(rest, stdout)
	case "version":
		fmt.Fprintf(stdout, "depth %s\n", version.String())
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}
	if err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "depth %s: %v\n", command, err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `depth - environment depth reprojection tools

Usage: depth <command> [options]

Commands:
  reproject  Compute depth params and 6DOF/3DOF matrices for a frame descriptor
  ray        Cast a passthrough camera ray through a pixel
  stats      Evaluate depth band statistics of a raw float32 depth image
  simulate   Drive the depth provider with a synthetic head and record a session
  replay     Recompute a recorded session and write its reports
  migrate    Manage the session database schema
  version    Show version information
  help       Show this help message

Run 'depth <command> -h' for the options of a command.
`)
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// loadSettings reads a tuning file, or returns the defaults when path is
// empty.
func loadSettings(path string) (*config.DepthConfig, error) {
	if path == "" {
		return config.EmptyDepthConfig(), nil
	}
	return config.LoadDepthConfig(path)
}
