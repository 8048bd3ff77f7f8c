// Package bridge wires a userspace 9p file server to the kernel's
// trans=fd mount facility through a pair of anonymous pipes.
package bridge

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"
)

// Channel is a full-duplex link built from two independent
// unidirectional pipes. The four ends are named for the process that
// will consume them: the service reads requests from ServiceRead and
// writes responses to ServiceWrite, while the mount helper reads from
// MountRead and writes to MountWrite.
//
// The crossing is the whole point: ServiceWrite and MountRead are the
// two ends of one pipe, MountWrite and ServiceRead the two ends of the
// other. Two processes that each only ever see their own two ends end
// up talking to each other.
type Channel struct {
	ServiceRead  *os.File
	ServiceWrite *os.File
	MountRead    *os.File
	MountWrite   *os.File

	closed atomic.Bool
}

// NewChannel allocates both pipes and assigns the four role handles.
// Pipe allocation can fail when the descriptor table is exhausted; if
// the second pipe fails, the first is closed before returning.
func NewChannel() (*Channel, error) {
	// Pipe one carries bytes from the mount helper to the service,
	// pipe two the other way around. No buffer is shared between them.
	toServiceR, toServiceW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("allocating service pipe: %w", err)
	}
	toMountR, toMountW, err := os.Pipe()
	if err != nil {
		toServiceR.Close()
		toServiceW.Close()
		return nil, fmt.Errorf("allocating mount pipe: %w", err)
	}

	return &Channel{
		ServiceRead:  toServiceR,
		MountWrite:   toServiceW,
		MountRead:    toMountR,
		ServiceWrite: toMountW,
	}, nil
}

// ReleaseService closes the parent's copies of the two service-side
// ends. This must happen right after the service process is started:
// a write end left open in the parent keeps the mount helper from ever
// seeing EOF once the service exits, and leaked parent descriptors
// accumulate across invocations.
func (c *Channel) ReleaseService() error {
	var errs *multierror.Error
	errs = multierror.Append(errs, closeEnd(&c.ServiceRead))
	errs = multierror.Append(errs, closeEnd(&c.ServiceWrite))
	return errs.ErrorOrNil()
}

// ReleaseMount closes the parent's copies of the two mount-side ends,
// for the same reason as ReleaseService.
func (c *Channel) ReleaseMount() error {
	var errs *multierror.Error
	errs = multierror.Append(errs, closeEnd(&c.MountRead))
	errs = multierror.Append(errs, closeEnd(&c.MountWrite))
	return errs.ErrorOrNil()
}

// Close closes whichever ends are still open in the parent. It is safe
// to call more than once and after either Release method.
func (c *Channel) Close() error {
	if !c.closed.CAS(false, true) {
		return nil
	}
	var errs *multierror.Error
	errs = multierror.Append(errs, c.ReleaseService())
	errs = multierror.Append(errs, c.ReleaseMount())
	return errs.ErrorOrNil()
}

func closeEnd(f **os.File) error {
	if *f == nil {
		return nil
	}
	err := (*f).Close()
	*f = nil
	return err
}
