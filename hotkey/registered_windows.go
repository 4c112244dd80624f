package hotkey

import "golang.design/x/hotkey"

func comboMods(p Preset) ([]hotkey.Modifier, bool) {
	switch p {
	case PresetCmdShiftSpace:
		return []hotkey.Modifier{hotkey.ModWin, hotkey.ModShift}, true
	case PresetOptSpace:
		return []hotkey.Modifier{hotkey.ModAlt}, true
	case PresetCtrlSpace:
		return []hotkey.Modifier{hotkey.ModCtrl}, true
	}
	return nil, false
}
