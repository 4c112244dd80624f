//go:build linux

package main

import (
	"errors"
	"os/exec"
)

var terminals = []string{"x-terminal-emulator", "gnome-terminal", "konsole", "xterm"}

// openHistoryViewer runs the history browser in the first terminal emulator
// found on PATH.
func openHistoryViewer(dir string) error {
	cmdline, err := historyCommand(dir)
	if err != nil {
		return err
	}
	for _, t := range terminals {
		if path, err := exec.LookPath(t); err == nil {
			if t == "gnome-terminal" {
				return exec.Command(path, "--", "sh", "-c", cmdline).Start()
			}
			return exec.Command(path, "-e", "sh", "-c", cmdline).Start()
		}
	}
	return errors.New("no terminal emulator found")
}
