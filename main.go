package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KenKaminsky/voice-dictation/app"
	"github.com/KenKaminsky/voice-dictation/audio"
	"github.com/KenKaminsky/voice-dictation/beep"
	"github.com/KenKaminsky/voice-dictation/config"
	"github.com/KenKaminsky/voice-dictation/doctor"
	"github.com/KenKaminsky/voice-dictation/encoder"
	"github.com/KenKaminsky/voice-dictation/history"
	"github.com/KenKaminsky/voice-dictation/hotkey"
	"github.com/KenKaminsky/voice-dictation/log"
	"github.com/KenKaminsky/voice-dictation/paste"
	"github.com/KenKaminsky/voice-dictation/prefs"
	"github.com/KenKaminsky/voice-dictation/shutdown"
	"github.com/KenKaminsky/voice-dictation/transcriber"
	"github.com/KenKaminsky/voice-dictation/tray"
)

var version = "dev"

type options struct {
	logPath   string
	configDir string
	device    string
	hotkey    string
	setup     bool
	doctor    bool
	test      string
	fakeText  string
	noTray    bool
	version   bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.logPath, "logpath", "", "log directory (default: OS-specific location, use ./ for current dir)")
	flag.StringVar(&o.configDir, "config", "", "application-support directory holding config.toml, prefs.json and history.json")
	flag.StringVar(&o.device, "device", "", "use the named microphone")
	flag.StringVar(&o.hotkey, "hotkey", "", "hotkey for this run: fn, right_cmd, cmd_shift_space, opt_space, ctrl_space")
	flag.BoolVar(&o.setup, "setup", false, "pick the microphone interactively")
	flag.BoolVar(&o.doctor, "doctor", false, "run system diagnostics and exit")
	flag.StringVar(&o.test, "test", "", "headless mode: replay this WAV, driven by KEYDOWN/KEYUP/WAIT/SLEEP/QUIT on stdin")
	flag.StringVar(&o.fakeText, "fake-text", "", "with -test, answer every utterance with this text instead of calling the engine")
	flag.BoolVar(&o.noTray, "notray", false, "print status changes instead of showing a menu-bar item")
	flag.BoolVar(&o.version, "version", false, "print version and exit")
	flag.Parse()
	return o
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	log.Errorf(format, args...)
	log.Close()
	os.Exit(1)
}

// initCrashLog sends runtime crash output to crash_log.txt in the log dir.
func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	f, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(f, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(f, debug.CrashOptions{})
}

func run() {
	if len(os.Args) > 1 && os.Args[1] == "history" {
		os.Exit(runHistory(os.Args[2:]))
	}

	opts := parseFlags()
	if opts.version {
		fmt.Printf("voice-dictation %s\n", version)
		os.Exit(0)
	}

	logDir, err := log.ResolveDir(opts.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logDir)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()
	initCrashLog()

	loaded, err := config.Load(opts.configDir)
	if err != nil {
		fatalf("%v", err)
	}
	if err := os.MkdirAll(loaded.Dir, 0755); err != nil {
		fatalf("creating %s: %v", loaded.Dir, err)
	}
	for _, w := range loaded.Warnings {
		log.Warn(w)
	}
	cfg := loaded.Config
	if opts.device != "" {
		cfg.Audio.Device = opts.device
	}
	if !cfg.UI.Sounds {
		beep.Disable()
	}

	engine := transcriber.NewLocal(transcriber.Config{
		URL:      cfg.Engine.URL,
		Model:    cfg.Engine.Model,
		Language: cfg.Engine.Language,
		Format:   cfg.Engine.Format,
		APIKey:   cfg.Engine.APIKey(),
	})

	pr := prefs.Open(loaded.PrefsPath())
	preset := pr.Hotkey()
	if opts.hotkey != "" {
		if preset, err = hotkey.ParsePreset(opts.hotkey); err != nil {
			fatalf("-hotkey: %v", err)
		}
	}

	switch {
	case opts.doctor:
		os.Exit(runDoctor(cfg, engine, preset))
	case opts.test != "":
		os.Exit(runTestMode(opts, loaded, preset))
	}
	os.Exit(runApp(opts, loaded, engine, pr, preset))
}

func pasteConfig(cfg config.PasteConfig) paste.Config {
	mode, _ := paste.ParseMode(cfg.Mode)
	return paste.Config{
		Mode:             mode,
		SettleDelay:      time.Duration(cfg.SettleMS) * time.Millisecond,
		CharDelay:        time.Duration(cfg.CharDelayMS) * time.Millisecond,
		RestoreClipboard: cfg.RestoreClipboard,
	}
}

// pickDevice resolves [audio] device, or the interactive picker with -setup.
// A device that cannot be found falls back to the system default.
func pickDevice(ctx audio.Context, name string, setup bool) *audio.DeviceInfo {
	if setup {
		d, err := audio.SelectDevice(ctx, name)
		if errors.Is(err, audio.ErrSelectionCancelled) {
			os.Exit(130)
		}
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v; using default device\n", err)
			return nil
		}
		return d
	}
	if name == "" {
		return nil
	}
	d, err := audio.FindDevice(ctx, name)
	if err != nil {
		log.Warnf("device %q: %v; using default device", name, err)
		return nil
	}
	return d
}

func runApp(opts options, loaded config.Loaded, engine *transcriber.Local, pr *prefs.Store, preset hotkey.Preset) int {
	cfg := loaded.Config

	actx, err := audio.NewContext()
	if err != nil {
		fatalf("audio context init: %v", err)
	}
	defer actx.Close()
	device := pickDevice(actx, cfg.Audio.Device, opts.setup)
	if device != nil && audio.IsBluetooth(device.Name) {
		log.Warnf("bluetooth microphone %q: expect lower audio quality", device.Name)
	}

	recorder := audio.NewRecorder(actx, audio.RecorderConfig{
		Device:   device,
		Channels: encoder.Channels,
		Dir:      cfg.Audio.RecordingsDir,
	})
	defer recorder.Close()

	keyboard := paste.NewSystemKeyboard()
	go func() {
		if err := keyboard.Init(); err != nil {
			log.Warnf("keystroke init: %v", err)
		}
	}()
	paster := paste.New(pasteConfig(cfg.Paste), paste.SystemClipboard{}, keyboard)

	observer, obsErr := newObserver(cfg.Hotkey.Observer, preset)
	detector := hotkey.NewDetector(preset)

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	var a *app.App
	var ui app.UI
	var menu *tray.Menu
	if cfg.UI.Tray && !opts.noTray {
		menu = tray.New(preset, tray.Actions{
			SelectHotkey: func(p hotkey.Preset) {
				if err := a.SetHotkey(p); err != nil {
					log.Errorf("hotkey: %v", err)
				}
			},
			ViewHistory: func() {
				if err := openHistoryViewer(loaded.Dir); err != nil {
					log.Errorf("history viewer: %v", err)
					a.SetStatusError(err)
				}
			},
			LoadModel: func() { a.LoadModel(ctx) },
			Supported: func(p hotkey.Preset) bool {
				return observer != nil && observer.Supports(p) == nil
			},
		})
		ui = menu
	} else {
		ui = tray.NewConsole(os.Stdout)
	}

	a = app.New(app.Deps{
		Recorder: recorder,
		Engine:   engine,
		Paster:   paster,
		History:  history.Open(loaded.HistoryPath()),
		Prefs:    pr,
		Detector: detector,
		Observer: observer,
		UI:       ui,
		Cues:     beep.Player{},
	})

	if menu != nil {
		quit := menu.Start()
		defer menu.Stop()
		go func() {
			select {
			case <-quit:
				stop()
			case <-ctx.Done():
			}
		}()
	}
	ui.SetIcon(app.IconIdle)

	log.SessionStart(engine.Name(), string(preset), cfg.Paste.Mode)
	fmt.Fprintf(os.Stderr, "voice-dictation %s: hold %s to dictate (model %s at %s)\n",
		version, preset.Label(), engine.Model(), cfg.Engine.URL)

	if obsErr == nil {
		obsErr = observer.Supports(preset)
	}
	if obsErr == nil {
		obsErr = observer.Start(detector.Handle)
	}
	if obsErr != nil {
		reportObserverError(a, obsErr)
	} else {
		defer observer.Stop()
	}

	go beep.Init()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(gctx) })
	g.Go(func() error {
		a.LoadModel(gctx)
		return nil
	})
	g.Go(func() error {
		err := pr.Watch(gctx, func(p hotkey.Preset) {
			if observer != nil && observer.Supports(p) != nil {
				log.Warnf("prefs: %s not supported by the %s observer", p, cfg.Hotkey.Observer)
				return
			}
			a.ApplyHotkey(p)
		})
		if err != nil {
			log.Warnf("prefs watch: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		detector.Close()
		return nil
	})

	err = g.Wait()
	a.Wait()
	log.SessionEnd(a.Transcribed())
	if err != nil {
		log.Errorf("run: %v", err)
		return 1
	}
	return 0
}

// reportObserverError surfaces a failed keyboard observer everywhere the
// user might look: log, menu status, stderr and the error cue.
func reportObserverError(a *app.App, err error) {
	log.Errorf("keyboard observer: %v", err)
	a.SetStatusError(err)
	fmt.Fprintf(os.Stderr, "Error: hotkey detection unavailable: %v\n", err)
	if errors.Is(err, hotkey.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "Run with -doctor for setup instructions.")
	}
	beep.PlayError()
}

func runDoctor(cfg config.Config, engine *transcriber.Local, preset hotkey.Preset) int {
	env := doctor.Env{
		Out:       os.Stdout,
		Preset:    preset,
		Engine:    engine,
		EngineURL: cfg.Engine.URL,
		Clipboard: paste.SystemClipboard{},
		Keyboard:  paste.NewSystemKeyboard(),
	}
	if obs, err := newObserver(cfg.Hotkey.Observer, preset); err == nil {
		env.Observer = obs
	} else {
		log.Warnf("observer: %v", err)
	}
	if actx, err := audio.NewContext(); err == nil {
		defer actx.Close()
		env.Audio = actx
		env.Device = pickDevice(actx, cfg.Audio.Device, false)
	} else {
		log.Warnf("audio: %v", err)
	}
	return doctor.Run(env)
}
