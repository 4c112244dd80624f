package paste

import (
	"sync"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// SystemClipboard is the OS pasteboard.
type SystemClipboard struct{}

func (SystemClipboard) Read() (string, error)   { return clipboard.ReadAll() }
func (SystemClipboard) Write(text string) error { return clipboard.WriteAll(text) }

var keycodes = map[rune]int{
	'a': keybd_event.VK_A, 'b': keybd_event.VK_B, 'c': keybd_event.VK_C,
	'd': keybd_event.VK_D, 'e': keybd_event.VK_E, 'f': keybd_event.VK_F,
	'g': keybd_event.VK_G, 'h': keybd_event.VK_H, 'i': keybd_event.VK_I,
	'j': keybd_event.VK_J, 'k': keybd_event.VK_K, 'l': keybd_event.VK_L,
	'm': keybd_event.VK_M, 'n': keybd_event.VK_N, 'o': keybd_event.VK_O,
	'p': keybd_event.VK_P, 'q': keybd_event.VK_Q, 'r': keybd_event.VK_R,
	's': keybd_event.VK_S, 't': keybd_event.VK_T, 'u': keybd_event.VK_U,
	'v': keybd_event.VK_V, 'w': keybd_event.VK_W, 'x': keybd_event.VK_X,
	'y': keybd_event.VK_Y, 'z': keybd_event.VK_Z,
	'0': keybd_event.VK_0, '1': keybd_event.VK_1, '2': keybd_event.VK_2,
	'3': keybd_event.VK_3, '4': keybd_event.VK_4, '5': keybd_event.VK_5,
	'6': keybd_event.VK_6, '7': keybd_event.VK_7, '8': keybd_event.VK_8,
	'9':  keybd_event.VK_9,
	' ':  keybd_event.VK_SPACE,
	'\n': keybd_event.VK_ENTER,
	'\t': keybd_event.VK_TAB,

	// VK_SP2..VK_SP11 name the same US keys on every platform; VK_SP1 and
	// VK_SP12 do not, so grave uses its own constant.
	'-':  keybd_event.VK_SP2,
	'=':  keybd_event.VK_SP3,
	'[':  keybd_event.VK_SP4,
	']':  keybd_event.VK_SP5,
	';':  keybd_event.VK_SP6,
	'\'': keybd_event.VK_SP7,
	'\\': keybd_event.VK_SP8,
	',':  keybd_event.VK_SP9,
	'.':  keybd_event.VK_SP10,
	'/':  keybd_event.VK_SP11,
	'`':  keybd_event.VK_GRAVE,
}

// SystemKeyboard posts key events through the OS input APIs.
type SystemKeyboard struct {
	once sync.Once
	mu   sync.Mutex
	kb   keybd_event.KeyBonding
	err  error
}

func NewSystemKeyboard() *SystemKeyboard {
	return &SystemKeyboard{}
}

// Init creates the key bonding. On Linux this registers a uinput device,
// which takes a moment, so callers warm it up at startup.
func (k *SystemKeyboard) Init() error {
	k.once.Do(func() {
		k.kb, k.err = keybd_event.NewKeyBonding()
	})
	return k.err
}

func (k *SystemKeyboard) PasteShortcut() error {
	if err := k.Init(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.Clear()
	k.kb.SetKeys(keybd_event.VK_V)
	setPasteModifier(&k.kb)
	return k.kb.Launching()
}

func (k *SystemKeyboard) TypeKey(vk int, shift bool) error {
	if err := k.Init(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.Clear()
	k.kb.SetKeys(vk)
	k.kb.HasSHIFT(shift)
	return k.kb.Launching()
}
