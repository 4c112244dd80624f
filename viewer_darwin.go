//go:build darwin

package main

import (
	"fmt"
	"os/exec"
)

// openHistoryViewer runs the history browser in a new Terminal window.
func openHistoryViewer(dir string) error {
	cmdline, err := historyCommand(dir)
	if err != nil {
		return err
	}
	script := fmt.Sprintf("tell application \"Terminal\" to do script %q", cmdline)
	return exec.Command("osascript", "-e", script, "-e", `tell application "Terminal" to activate`).Start()
}
