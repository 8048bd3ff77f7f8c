package cmdutil

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/require"
)

func TestLogLevelSet(t *testing.T) {
	var ll LogLevel
	require.Equal(t, "info", ll.String())

	require.NoError(t, ll.Set("DEBUG"))
	require.Equal(t, "debug", ll.String())

	require.Error(t, ll.Set("verbose"))
	require.Equal(t, "debug", ll.String(), "a rejected value must not change the level")
}

func TestNewLoggerFilters(t *testing.T) {
	var ll LogLevel
	require.NoError(t, ll.Set("warn"))

	var buf bytes.Buffer
	l := NewLogger(&buf, ll)

	level.Info(l).Log("msg", "dropped")
	level.Warn(l).Log("msg", "kept")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "kept")
}
