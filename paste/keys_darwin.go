package paste

import "github.com/micmonay/keybd_event"

func setPasteModifier(kb *keybd_event.KeyBonding) {
	kb.HasSuper(true) // Cmd+V
}

const PasteShortcutName = "Cmd+V"
