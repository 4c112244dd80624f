//go:build darwin

package tray

import "golang.design/x/hotkey/mainthread"

// runOnMain starts the status item on the Cocoa main thread, which main
// hands over through mainthread.Init.
func runOnMain(start func()) {
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
}
