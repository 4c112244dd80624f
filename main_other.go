//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

// The menu bar and registered hotkeys need the process main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	mainthread.Init(run)
}
