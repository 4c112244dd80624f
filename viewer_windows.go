//go:build windows

package main

import (
	"fmt"
	"os"
	"os/exec"
)

func openHistoryViewer(dir string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	return exec.Command("cmd", "/c", "start", "", exe, "history", "-config", dir).Start()
}
