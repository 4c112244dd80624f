package hotkey

// Windows virtual-key codes as reported by gohook's rawcode.
var rawcodes = map[uint16]uint16{
	0x20: CodeSpace,
	0xa0: CodeShift,
	0xa1: CodeRShift,
	0xa2: CodeCtrl,
	0xa3: CodeRCtrl,
	0xa4: CodeOpt,
	0xa5: CodeROpt,
	0x5b: CodeLeftCmd,
	0x5c: CodeRightCmd,
}

func normalizeRawcode(raw uint16) uint16 {
	if code, ok := rawcodes[raw]; ok {
		return code
	}
	return CodeOther
}
