package bridge

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
)

// Protocol version requested from the kernel 9p client.
const protocolVersion = "9p2000.L"

// volumeScheme prefixes the device name shown in the mount table.
const volumeScheme = "unpfs"

// MountSpec describes one 9p mount: where the exported tree comes
// from, where it lands, and the identity the kernel should assume for
// files the server reports no owner for.
type MountSpec struct {
	Hostname string
	Source   string
	Target   string
	UID      int
	GID      int
	Username string
}

// DetectMountSpec builds a MountSpec for the invoking user on this
// host.
func DetectMountSpec(source, target string) (MountSpec, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return MountSpec{}, fmt.Errorf("resolving hostname: %w", err)
	}
	u, err := user.Current()
	if err != nil {
		return MountSpec{}, fmt.Errorf("resolving current user: %w", err)
	}
	return MountSpec{
		Hostname: hostname,
		Source:   source,
		Target:   target,
		UID:      os.Getuid(),
		GID:      os.Getgid(),
		Username: u.Username,
	}, nil
}

// Options serializes the -o argument for mount(8). The rfdno/wfdno
// values are always 0 and 1: the helper's descriptors are renumbered
// into its own table at spawn time, so the parent-side numbers never
// matter.
//
// The options are an ordered list, serialized exactly once; values are
// escaped so a source path containing a comma cannot splice extra
// options into the string.
func (s MountSpec) Options() string {
	opts := []struct{ name, value string }{
		{"trans", "fd"},
		{"rfdno", "0"},
		{"wfdno", "1"},
		{"version", protocolVersion},
		{"dfltuid", strconv.Itoa(s.UID)},
		{"dfltgid", strconv.Itoa(s.GID)},
		{"uname", s.Username},
		{"aname", s.Source},
	}

	parts := make([]string, 0, len(opts))
	for _, opt := range opts {
		parts = append(parts, opt.name+"="+escapeOption(opt.value))
	}
	return strings.Join(parts, ",")
}

// VolumeID returns the device name for the mount table, e.g.
// unpfs://host1/export. The source path is interpolated as-is; a path
// containing the scheme separator yields an odd but harmless name.
func (s MountSpec) VolumeID() string {
	return fmt.Sprintf("%s://%s%s", volumeScheme, s.Hostname, s.Source)
}

// MountArgs returns the argument vector for mount(8), without the
// elevation wrapper in front.
func (s MountSpec) MountArgs() []string {
	return []string{"-t", "9p", "-o", s.Options(), s.VolumeID(), s.Target}
}

func escapeOption(v string) string {
	if strings.Contains(v, `\`) {
		v = strings.ReplaceAll(v, `\`, `\\`)
	}
	if strings.Contains(v, `,`) {
		v = strings.ReplaceAll(v, `,`, `\,`)
	}
	return v
}
