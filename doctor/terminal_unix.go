//go:build !windows

package doctor

import "os/exec"

// resetTerminal undoes raw mode left behind by a keyboard hook.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}
