//go:build linux

// Command 9pbridge exports a local directory through unpfs and mounts
// it on a target directory using the kernel's trans=fd 9p transport.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/pfpacket/9pbridge/internal/bridge"
	"github.com/pfpacket/9pbridge/internal/cmdutil"
)

// BSD sysexits EX_USAGE; used for both bad arguments and a missing
// service binary, the two "the operator can fix this" failures.
const exUsage = 64

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	var (
		ll      cmdutil.LogLevel
		service string
	)

	fs := flag.NewFlagSet("9pbridge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(&ll, "log.level", "Level to display logs at")
	fs.StringVar(&service, "service", bridge.DefaultOptions.ServiceBinary, "9p file server binary to spawn")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error parsing flags: %s\n", err.Error())
		return 1
	}

	if fs.NArg() != 2 {
		usage(fs, stderr)
		return exUsage
	}

	l := cmdutil.NewLogger(stderr, ll)

	spec, err := bridge.DetectMountSpec(fs.Arg(0), fs.Arg(1))
	if err != nil {
		level.Error(l).Log("msg", "error resolving mount identity", "err", err)
		return 1
	}

	code, err := bridge.Run(bridge.Options{
		ServiceBinary: service,
		Elevate:       bridge.DefaultOptions.Elevate,
		Spec:          spec,
		Logger:        l,
	})
	if errors.Is(err, bridge.ErrServiceNotFound) {
		fmt.Fprintf(stderr, "error: %s cannot be found in the system PATH\n", service)
		return exUsage
	}
	if err != nil {
		level.Error(l).Log("msg", "error during run", "err", err)
		return 1
	}
	return code
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `you did not specify the source or the target folders

usage:

    %[1]s [flags] <folder to export through unpfs> <mount point for the exported folder>

The mount operation runs through sudo. If sudo is not passwordless and
you are not running as root, the mount will fail.

The spawned file server runs with RUST_LOG=info, so its progress shows
up on stderr.

flags:
`, fs.Name())
	fs.PrintDefaults()
}
