//go:build !windows && !plan9

package main

import (
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

const daemonEnv = "MCVHOST_DAEMONIZED"

// daemonize starts a detached copy of the process and reports true in the
// parent. The copy leaves the controlling terminal's session and reports
// false.
func daemonize() (bool, error) {
	if os.Getenv(daemonEnv) == "1" {
		_, err := unix.Setsid()
		return false, err
	}

	exe, err := os.Executable()
	if err != nil {
		return false, err
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonEnv+"=1")
	err = cmd.Start()
	if err != nil {
		return false, err
	}
	return true, cmd.Process.Release()
}
