// Package doctor runs the -doctor diagnostics: keyboard observer, microphone,
// speech server and clipboard.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/KenKaminsky/voice-dictation/audio"
	"github.com/KenKaminsky/voice-dictation/hotkey"
	"github.com/KenKaminsky/voice-dictation/paste"
)

// Pinger is the engine reachability probe.
type Pinger interface {
	Ping() error
}

// KeyboardInit prepares synthesized keystrokes.
type KeyboardInit interface {
	Init() error
}

// Env is everything the checks touch. Out defaults to stdout in main.
type Env struct {
	Out       io.Writer
	Observer  hotkey.Observer
	Preset    hotkey.Preset
	Audio     audio.Context
	Device    *audio.DeviceInfo
	Listen    time.Duration // microphone sample length
	Engine    Pinger
	EngineURL string
	Clipboard paste.Clipboard
	Keyboard  KeyboardInit
	Timeout   time.Duration // clipboard round trip
}

type check struct {
	name string
	run  func(Env) bool
}

var checks = []check{
	{"Keyboard observer", checkObserver},
	{"Microphone", checkMicrophone},
	{"Speech server", checkEngine},
	{"Clipboard and paste", checkClipboard},
}

// Run executes every check and returns an exit code (0 = all pass, 1 = any
// fail).
func Run(env Env) int {
	if env.Listen == 0 {
		env.Listen = time.Second
	}
	if env.Timeout == 0 {
		env.Timeout = 3 * time.Second
	}
	out := env.Out

	fmt.Fprintln(out, "voice-dictation doctor")
	fmt.Fprintln(out, "======================")

	failed := 0
	for i, c := range checks {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(checks), c.name)
		if !c.run(env) {
			failed++
		}
	}

	fmt.Fprintln(out)
	if failed == 0 {
		fmt.Fprintln(out, "All checks passed!")
		return 0
	}
	fmt.Fprintf(out, "%d check(s) failed. See details above.\n", failed)
	return 1
}

func pass(out io.Writer, format string, args ...any) bool {
	fmt.Fprintf(out, "  PASS: "+format+"\n", args...)
	return true
}

func fail(out io.Writer, format string, args ...any) bool {
	fmt.Fprintf(out, "  FAIL: "+format+"\n", args...)
	return false
}

func checkObserver(env Env) bool {
	out := env.Out
	if env.Observer == nil {
		return fail(out, "no keyboard observer available on %s", runtime.GOOS)
	}
	err := hotkey.Probe(env.Observer)
	resetTerminal()
	if err != nil {
		fail(out, "%v", err)
		if errors.Is(err, hotkey.ErrPermissionDenied) {
			fmt.Fprintln(out, "  Fix: "+permissionHint())
		}
		return false
	}
	if err := env.Observer.Supports(env.Preset); err != nil {
		return fail(out, "%s: %v", env.Preset.Label(), err)
	}
	return pass(out, "observer installed, hotkey %s", env.Preset.Label())
}

func permissionHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "System Settings > Privacy & Security > Accessibility and Input Monitoring, enable your terminal"
	case "linux":
		return "add yourself to the input group: sudo usermod -aG input $USER, then log in again"
	}
	return "run with permission to observe the keyboard"
}

func checkMicrophone(env Env) bool {
	out := env.Out
	if env.Audio == nil {
		return fail(out, "audio backend unavailable")
	}
	devices, err := env.Audio.Devices()
	if err != nil {
		return fail(out, "cannot list devices: %v", err)
	}
	if len(devices) == 0 {
		return fail(out, "no capture devices found")
	}

	rec := audio.NewRecorder(env.Audio, audio.RecorderConfig{Device: env.Device})
	defer rec.Close()
	fmt.Fprintf(out, "  Listening on %s for %.1fs...\n", rec.DeviceName(), env.Listen.Seconds())
	if err := rec.Start(nil); err != nil {
		return fail(out, "capture: %v", err)
	}
	time.Sleep(env.Listen)
	r := rec.Stop()
	if r == nil {
		return fail(out, "no audio captured (microphone permission?)")
	}
	if audio.IsBluetooth(rec.DeviceName()) {
		fmt.Fprintln(out, "  Note: Bluetooth microphones switch headsets to low-quality audio")
	}
	if r.Peak == 0 {
		return fail(out, "captured %.1fs of pure silence (muted or permission denied?)", r.Duration.Seconds())
	}
	return pass(out, "captured %.1fs, peak %.2f", r.Duration.Seconds(), r.Peak)
}

func checkEngine(env Env) bool {
	out := env.Out
	if env.Engine == nil {
		return fail(out, "no engine configured")
	}
	if err := env.Engine.Ping(); err != nil {
		fail(out, "%s: %v", env.EngineURL, err)
		fmt.Fprintln(out, "  Fix: start the local speech server or set [engine] url in config.toml")
		return false
	}
	return pass(out, "%s reachable", env.EngineURL)
}

func checkClipboard(env Env) bool {
	out := env.Out
	if env.Clipboard == nil {
		return fail(out, "clipboard unavailable")
	}

	probe := fmt.Sprintf("voice-dictation-doctor-%d", time.Now().UnixNano())
	type result struct {
		previous, readback string
		phase              string
		err                error
	}
	ch := make(chan result, 1)
	go func() {
		prev, _ := env.Clipboard.Read()
		if err := env.Clipboard.Write(probe); err != nil {
			ch <- result{phase: "write", err: err}
			return
		}
		got, err := env.Clipboard.Read()
		if err != nil {
			ch <- result{phase: "read", err: err}
			return
		}
		ch <- result{previous: prev, readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return fail(out, "clipboard %s failed: %v", res.phase, res.err)
		}
		env.Clipboard.Write(res.previous)
		if res.readback != probe {
			return fail(out, "clipboard mismatch: wrote %q, got %q", probe, res.readback)
		}
	case <-time.After(env.Timeout):
		return fail(out, "clipboard timed out")
	}

	if env.Keyboard != nil {
		if err := env.Keyboard.Init(); err != nil {
			return fail(out, "keystroke synthesis: %v", err)
		}
	}
	return pass(out, "clipboard write/read verified, %s ready", paste.PasteShortcutName)
}
