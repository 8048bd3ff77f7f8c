//go:build linux

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunUsageError(t *testing.T) {
	tt := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"/export"}},
		{"flags only", []string{"-log.level", "debug"}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			require.Equal(t, exUsage, run(tc.args, &stderr))
			require.Contains(t, stderr.String(), "usage:")
			require.Contains(t, stderr.String(), "mount point for the exported folder")
		})
	}
}

func TestRunServiceMissing(t *testing.T) {
	var stderr bytes.Buffer
	code := run([]string{"-service", "no-such-9p-server-binary", t.TempDir(), t.TempDir()}, &stderr)
	require.Equal(t, exUsage, code)
	require.Contains(t, stderr.String(), "cannot be found in the system PATH")
}
