// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

// SetupLogging sends all log output to w at the given root level.
func SetupLogging(w io.Writer, level string) error {
	logLevel, ok := loggo.ParseLevel(level)
	if !ok {
		return errors.NotValidf("log level %q", level)
	}
	if _, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(w, logFormatter)); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(loggo.ConfigureLoggers(fmt.Sprintf("<root>=%s", logLevel)))
}

func logFormatter(entry loggo.Entry) string {
	ts := entry.Timestamp.In(time.UTC).Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s %s %s %s", ts, entry.Level, entry.Module, entry.Message)
}
