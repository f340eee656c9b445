//go:build windows || plan9

package main

import (
	"log/slog"
)

func daemonize() (bool, error) {
	slog.Warn("daemon mode is not supported on this platform, staying in the foreground")
	return false, nil
}
