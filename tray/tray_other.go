//go:build !darwin

package tray

func runOnMain(start func()) { start() }
