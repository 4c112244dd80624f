package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/KenKaminsky/voice-dictation/app"
	"github.com/KenKaminsky/voice-dictation/audio"
	"github.com/KenKaminsky/voice-dictation/beep"
	"github.com/KenKaminsky/voice-dictation/config"
	"github.com/KenKaminsky/voice-dictation/history"
	"github.com/KenKaminsky/voice-dictation/hotkey"
	"github.com/KenKaminsky/voice-dictation/log"
	"github.com/KenKaminsky/voice-dictation/prefs"
	"github.com/KenKaminsky/voice-dictation/transcriber"
	"github.com/KenKaminsky/voice-dictation/tray"
)

// printPaster stands in for the keyboard in headless runs.
type printPaster struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printPaster) Paste(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "PASTED %s\n", text)
}

// runTestMode drives the full dictation pipeline from a WAV file and stdin
// commands, with no keyboard, microphone or menu bar involved.
func runTestMode(opts options, loaded config.Loaded, preset hotkey.Preset) int {
	beep.Disable()
	cfg := loaded.Config

	actx, err := audio.NewFakeContext(opts.test, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		return 1
	}
	recorder := audio.NewRecorder(actx, audio.RecorderConfig{
		Channels: actx.Channels(),
		Dir:      cfg.Audio.RecordingsDir,
	})
	defer recorder.Close()

	var engine transcriber.Engine
	if opts.fakeText != "" {
		engine = transcriber.NewFake(opts.fakeText, nil)
	} else {
		engine = transcriber.NewLocal(transcriber.Config{
			URL:      cfg.Engine.URL,
			Model:    cfg.Engine.Model,
			Language: cfg.Engine.Language,
			Format:   cfg.Engine.Format,
			APIKey:   cfg.Engine.APIKey(),
		})
	}

	obs := hotkey.NewFake()
	det := hotkey.NewDetector(preset)
	if err := obs.Start(det.Handle); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer obs.Stop()

	ui := tray.NewConsole(os.Stdout)
	a := app.New(app.Deps{
		Recorder: recorder,
		Engine:   engine,
		Paster:   &printPaster{w: os.Stdout},
		History:  history.Open(loaded.HistoryPath()),
		Prefs:    prefs.Open(loaded.PrefsPath()),
		Detector: det,
		UI:       ui,
		Cues:     beep.Player{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		a.Run(ctx)
	}()

	log.SessionStart(engine.Name(), string(preset), "print")
	ui.SetIcon(app.IconIdle)
	ui.SetStatus(app.StatusReady)

	var expected int64
	press := func(send func(hotkey.Preset)) {
		was := det.Active()
		send(det.Preset())
		if det.Active() != was {
			expected++
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "":
		case cmd == "KEYDOWN":
			press(obs.SimKeydown)
		case cmd == "KEYUP":
			press(obs.SimKeyup)
		case cmd == "WAIT":
			waitEdges(a, expected)
			a.Wait()
		case cmd == "QUIT":
			return finishTestMode(a, det, runDone)
		case strings.HasPrefix(cmd, "SLEEP "):
			ms, err := strconv.Atoi(strings.TrimSpace(cmd[len("SLEEP "):]))
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad SLEEP: %v\n", err)
				continue
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		log.Warnf("stdin: %v", err)
	}
	return finishTestMode(a, det, runDone)
}

func waitEdges(a *app.App, n int64) {
	for a.EdgesHandled() < n {
		time.Sleep(5 * time.Millisecond)
	}
}

func finishTestMode(a *app.App, det *hotkey.Detector, runDone <-chan struct{}) int {
	det.Close()
	<-runDone
	a.Wait()
	log.SessionEnd(a.Transcribed())
	return 0
}
