package hotkey

// X11 keysyms as reported by gohook's rawcode.
var rawcodes = map[uint16]uint16{
	0x0020: CodeSpace,
	0xffe1: CodeShift,
	0xffe2: CodeRShift,
	0xffe3: CodeCtrl,
	0xffe4: CodeRCtrl,
	0xffe9: CodeOpt,
	0xffea: CodeROpt,
	0xffeb: CodeLeftCmd,
	0xffec: CodeRightCmd,
}

func normalizeRawcode(raw uint16) uint16 {
	if code, ok := rawcodes[raw]; ok {
		return code
	}
	return CodeOther
}
