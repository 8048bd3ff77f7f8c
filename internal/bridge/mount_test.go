package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSpec() MountSpec {
	return MountSpec{
		Hostname: "host1",
		Source:   "/export",
		Target:   "/mnt/export",
		UID:      1000,
		GID:      1000,
		Username: "alice",
	}
}

func TestMountSpecOptions(t *testing.T) {
	expect := "trans=fd,rfdno=0,wfdno=1,version=9p2000.L,dfltuid=1000,dfltgid=1000,uname=alice,aname=/export"
	require.Equal(t, expect, testSpec().Options())
}

func TestMountSpecVolumeID(t *testing.T) {
	require.Equal(t, "unpfs://host1/export", testSpec().VolumeID())
}

func TestMountSpecOptionsEscaping(t *testing.T) {
	tt := []struct {
		name   string
		source string
		expect string
	}{
		{"comma", "/ex,port", `aname=/ex\,port`},
		{"backslash", `/ex\port`, `aname=/ex\\port`},
		{"both", `/ex\,port`, `aname=/ex\\\,port`},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			spec := testSpec()
			spec.Source = tc.source
			require.Contains(t, spec.Options(), tc.expect)
		})
	}
}

func TestMountSpecMountArgs(t *testing.T) {
	spec := testSpec()
	require.Equal(t, []string{
		"-t", "9p",
		"-o", spec.Options(),
		"unpfs://host1/export",
		"/mnt/export",
	}, spec.MountArgs())
}
