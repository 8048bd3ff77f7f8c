package bridge

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrServiceNotFound is returned when the 9p service binary cannot be
// resolved on the search path. The check runs before any pipe is
// allocated, so the common "tool not installed" failure leaks nothing.
var ErrServiceNotFound = errors.New("service binary not found in PATH")

// serviceLogEnv raises the service's log verbosity; unpfs is a Rust
// program and reads the usual env_logger variable.
const serviceLogEnv = "RUST_LOG=info"

// Options configures a single bridge run.
type Options struct {
	// ServiceBinary is the name of the 9p file server to spawn. It is
	// resolved through the search path.
	ServiceBinary string

	// Elevate is the command prefix the mount helper runs under,
	// typically sudo plus the mount binary. Tests substitute an
	// unprivileged double here.
	Elevate []string

	// Spec describes the mount to perform.
	Spec MountSpec

	// Logger receives progress records. The zero value is usable; a
	// nil Logger discards everything.
	Logger log.Logger
}

// DefaultOptions holds the production defaults for Options.
var DefaultOptions = Options{
	ServiceBinary: "unpfs",
	Elevate:       []string{"/usr/bin/sudo", "/usr/bin/mount"},
}

// Run spawns the 9p service and the privileged mount helper on the two
// sides of a fresh Channel and blocks until the helper exits. The
// helper's exit code is returned verbatim; the service is started but
// never waited on for a result, since it exits on its own once its
// pipe peer goes away.
//
// Both processes are wired before Run blocks, or neither is: any
// failure up to the second spawn aborts with all parent-side pipe ends
// closed.
func Run(o Options) (int, error) {
	l := o.Logger
	if l == nil {
		l = log.NewNopLogger()
	}
	if o.ServiceBinary == "" {
		o.ServiceBinary = DefaultOptions.ServiceBinary
	}
	if len(o.Elevate) == 0 {
		o.Elevate = DefaultOptions.Elevate
	}

	// Pre-flight: resolve the service binary before allocating pipes.
	servicePath, err := exec.LookPath(o.ServiceBinary)
	if err != nil {
		return 0, fmt.Errorf("resolving service binary %q: %w", o.ServiceBinary, ErrServiceNotFound)
	}

	ch, err := NewChannel()
	if err != nil {
		return 0, err
	}
	defer ch.Close()

	// The service consumes descriptors 0 and 1 as its duplex channel,
	// declared through the fd!<rfd>!<wfd> dial string.
	service := exec.Command(servicePath, "fd!0!1", o.Spec.Source)
	service.Stdin = ch.ServiceRead
	service.Stdout = ch.ServiceWrite
	service.Stderr = os.Stderr
	service.Env = append(os.Environ(), serviceLogEnv)

	level.Info(l).Log("msg", "starting 9p service", "cmd", strings.Join(service.Args, " "))
	if err := service.Start(); err != nil {
		return 0, fmt.Errorf("spawning %s: %w", o.ServiceBinary, err)
	}
	// Reap the service when it eventually dies so it never lingers as
	// a zombie. Its exit status is deliberately not part of the
	// result.
	go func() { _ = service.Wait() }()

	// The parent must drop its service-side ends now: keeping the
	// write end open would stop the mount helper from ever seeing EOF
	// after the service exits.
	if err := ch.ReleaseService(); err != nil {
		level.Warn(l).Log("msg", "closing service-side pipe ends", "err", err)
	}

	args := append(append([]string{}, o.Elevate[1:]...), o.Spec.MountArgs()...)
	helper := exec.Command(o.Elevate[0], args...)
	helper.Stdin = ch.MountRead
	helper.Stdout = ch.MountWrite
	helper.Stderr = os.Stderr

	level.Info(l).Log("msg", "starting mount helper", "cmd", strings.Join(helper.Args, " "))
	if err := helper.Start(); err != nil {
		return 0, fmt.Errorf("spawning mount helper: %w", err)
	}
	if err := ch.ReleaseMount(); err != nil {
		level.Warn(l).Log("msg", "closing mount-side pipe ends", "err", err)
	}

	// Single suspension point: the helper's exit code is our own.
	err = helper.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("waiting for mount helper: %w", err)
	}
	return 0, nil
}
