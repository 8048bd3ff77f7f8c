// Package cmdutil holds small helpers shared by command entry points.
package cmdutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// LogLevel implements flag.Value and selects the minimum level logged.
// The zero value means info.
type LogLevel struct {
	name   string
	option level.Option
}

// String implements flag.Value.
func (l LogLevel) String() string {
	if l.name == "" {
		return "info"
	}
	return l.name
}

// Set implements flag.Value.
func (l *LogLevel) Set(in string) error {
	switch strings.ToLower(in) {
	case "error":
		l.option = level.AllowError()
	case "warn":
		l.option = level.AllowWarn()
	case "info":
		l.option = level.AllowInfo()
	case "debug":
		l.option = level.AllowDebug()
	default:
		return fmt.Errorf("unknown log level %q, valid options error, warn, info, debug", in)
	}
	l.name = strings.ToLower(in)
	return nil
}

// FilterOption returns l as an option for level.NewFilter.
func (l LogLevel) FilterOption() level.Option {
	if l.option == nil {
		return level.AllowInfo()
	}
	return l.option
}

// NewLogger builds the standard logfmt logger for a command: synced
// writes, level filtering, timestamp and caller annotations.
func NewLogger(w io.Writer, ll LogLevel) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = level.NewFilter(l, ll.FilterOption())
	return log.With(l, "ts", log.DefaultTimestamp, "caller", log.DefaultCaller)
}
