package hotkey

// gohook reports macOS virtual keycodes unchanged.
func normalizeRawcode(raw uint16) uint16 {
	return raw
}
