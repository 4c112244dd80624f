// Package app ties the hotkey edges to capture, transcription, paste and
// history, and mirrors progress into the menu-bar status and icon.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KenKaminsky/voice-dictation/audio"
	"github.com/KenKaminsky/voice-dictation/history"
	"github.com/KenKaminsky/voice-dictation/hotkey"
	"github.com/KenKaminsky/voice-dictation/log"
	"github.com/KenKaminsky/voice-dictation/prefs"
	"github.com/KenKaminsky/voice-dictation/transcriber"
)

// MinDuration is the shortest recording worth sending to the engine.
const MinDuration = 300 * time.Millisecond

// Menu-bar titles.
const (
	IconIdle       = "◉"
	IconRecording  = "◉ REC"
	IconProcessing = "◉ ..."
)

// Status lines.
const (
	StatusReady        = "Ready"
	StatusRecording    = "Recording..."
	StatusTranscribing = "Transcribing..."
	StatusTooShort     = "Ready (audio too short)"
	StatusPasting      = "Pasting..."
	StatusNoSpeech     = "Ready (no speech detected)"
	StatusLoading      = "Loading model..."
)

const errSnippet = 30

type State int

const (
	Idle State = iota
	Recording
	Transcribing
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	}
	return "idle"
}

// UI receives status and icon updates. Implementations must be safe for
// concurrent use; updates arrive from the control loop and from background
// transcriptions.
type UI interface {
	SetStatus(status string)
	SetIcon(icon string)
	SetHotkey(p hotkey.Preset)
}

// Recorder is the capture side of a dictation.
type Recorder interface {
	Start(onChunk func(samples []float32)) error
	Stop() *audio.Recording
}

type Paster interface {
	Paste(text string)
}

// Cues plays the audible feedback. A nil Cues is silent.
type Cues interface {
	PlayStart()
	PlayEnd()
	PlayError()
}

// Deps are built in main and handed to New.
type Deps struct {
	Recorder Recorder
	Engine   transcriber.Engine
	Paster   Paster
	History  *history.Store
	Prefs    *prefs.Store
	Detector *hotkey.Detector
	Observer hotkey.Observer // retargeted on preset changes when it supports it
	UI       UI
	Cues     Cues
}

type App struct {
	d Deps

	mu        sync.Mutex
	recording bool
	pending   int // queued or running transcriptions
	queue     []*audio.Recording
	draining  bool
	done      int
	idle      *sync.Cond

	handled atomic.Int64
}

func New(d Deps) *App {
	a := &App{d: d}
	a.idle = sync.NewCond(&a.mu)
	return a
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.recording:
		return Recording
	case a.pending > 0:
		return Transcribing
	}
	return Idle
}

// Transcribed reports how many utterances produced text this session.
func (a *App) Transcribed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// Run consumes detector edges until ctx is done or the detector is closed.
func (a *App) Run(ctx context.Context) error {
	edges := a.d.Detector.Edges()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-edges:
			if !ok {
				return nil
			}
			switch e {
			case hotkey.Press:
				a.Press()
			case hotkey.Release:
				a.Release()
			}
			a.handled.Add(1)
		}
	}
}

// EdgesHandled counts detector edges Run has acted on.
func (a *App) EdgesHandled() int64 { return a.handled.Load() }

// Press starts a recording unless one is already open.
func (a *App) Press() {
	a.mu.Lock()
	if a.recording {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	if err := a.d.Recorder.Start(nil); err != nil {
		log.Errorf("recording start: %v", err)
		a.d.UI.SetStatus(errorStatus(err))
		a.cue(Cues.PlayError)
		return
	}

	a.mu.Lock()
	a.recording = true
	a.mu.Unlock()

	log.Info("recording_start")
	a.d.UI.SetIcon(IconRecording)
	a.d.UI.SetStatus(StatusRecording)
	a.cue(Cues.PlayStart)
}

// Release closes the open recording and queues it for transcription. The
// call returns before the engine runs.
func (a *App) Release() {
	a.mu.Lock()
	if !a.recording {
		a.mu.Unlock()
		return
	}
	a.recording = false
	a.mu.Unlock()

	a.cue(Cues.PlayEnd)
	a.d.UI.SetIcon(IconProcessing)
	a.d.UI.SetStatus(StatusTranscribing)

	rec := a.d.Recorder.Stop()

	a.mu.Lock()
	a.pending++
	a.queue = append(a.queue, rec)
	if !a.draining {
		a.draining = true
		go a.drain()
	}
	a.mu.Unlock()
}

// drain runs queued transcriptions one at a time in release order.
func (a *App) drain() {
	for {
		a.mu.Lock()
		if len(a.queue) == 0 {
			a.draining = false
			a.mu.Unlock()
			return
		}
		rec := a.queue[0]
		a.queue[0] = nil
		a.queue = a.queue[1:]
		a.mu.Unlock()

		a.process(rec)

		a.mu.Lock()
		a.pending--
		if a.pending == 0 {
			a.idle.Broadcast()
		}
		a.mu.Unlock()
	}
}

// Wait blocks until every queued transcription has finished.
func (a *App) Wait() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.pending > 0 {
		a.idle.Wait()
	}
}

func (a *App) process(rec *audio.Recording) {
	defer a.resetIcon()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Errorf("transcription: %v", err)
			a.d.UI.SetStatus(errorStatus(err))
			a.cue(Cues.PlayError)
		}
	}()

	if rec == nil || rec.Duration < MinDuration {
		log.Info("audio_too_short")
		a.d.UI.SetStatus(StatusTooShort)
		return
	}

	text, err := a.d.Engine.Transcribe(context.Background(), rec.Samples)
	if err != nil {
		log.Errorf("transcription: %v", err)
		a.d.UI.SetStatus(errorStatus(err))
		a.cue(Cues.PlayError)
		return
	}
	if text == "" {
		log.Info("no_speech")
		a.d.UI.SetStatus(StatusNoSpeech)
		return
	}

	a.d.History.Add(text, rec.Duration.Seconds(), rec.Path)
	log.TranscriptionText(text)
	a.mu.Lock()
	a.done++
	a.mu.Unlock()

	a.d.UI.SetStatus(StatusPasting)
	a.d.Paster.Paste(text)
	a.d.UI.SetStatus(StatusReady)
}

// resetIcon returns the title to idle unless a newer recording is live.
func (a *App) resetIcon() {
	a.mu.Lock()
	live := a.recording
	a.mu.Unlock()
	if !live {
		a.d.UI.SetIcon(IconIdle)
	}
}

// LoadModel warms the engine and reports progress in the status line.
func (a *App) LoadModel(ctx context.Context) error {
	a.d.UI.SetStatus(StatusLoading)
	if err := a.d.Engine.LoadModel(ctx); err != nil {
		log.Errorf("model load: %v", err)
		a.d.UI.SetStatus("Model error: " + truncate(err.Error(), errSnippet))
		return err
	}
	log.Infof("model_loaded: %s", a.d.Engine.Name())
	if a.State() == Idle {
		a.d.UI.SetStatus(StatusReady)
	}
	return nil
}

// SetHotkey persists a user selection and applies it.
func (a *App) SetHotkey(p hotkey.Preset) error {
	if err := a.d.Prefs.SetHotkey(p); err != nil {
		return err
	}
	return a.ApplyHotkey(p)
}

// ApplyHotkey switches the observer and detector without writing prefs, for
// changes that were already persisted elsewhere. If the observer cannot move
// to p the old preset stays active.
func (a *App) ApplyHotkey(p hotkey.Preset) error {
	if a.d.Detector.Preset() == p {
		return nil
	}
	if rt, ok := a.d.Observer.(hotkey.Retargeter); ok {
		if err := rt.Retarget(p); err != nil {
			log.Errorf("hotkey %s: %v", p, err)
			a.SetStatusError(err)
			return err
		}
	}
	log.Infof("hotkey: %s", p)
	a.d.Detector.SetPreset(p)
	a.d.UI.SetHotkey(p)
	return nil
}

// SetStatusError shows a failure that happened outside a dictation.
func (a *App) SetStatusError(err error) {
	a.d.UI.SetStatus(errorStatus(err))
}

func (a *App) cue(play func(Cues)) {
	if a.d.Cues != nil {
		play(a.d.Cues)
	}
}

func errorStatus(err error) string {
	return "Error: " + truncate(err.Error(), errSnippet)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
