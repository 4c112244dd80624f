// Package log writes the two on-disk logs: diagnostics_log.txt (structured
// session events, rotated) and transcribe_log.txt (one line per dictation).
// Every function is a no-op until Init succeeds.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	diagFileName       = "diagnostics_log.txt"
	transcribeFileName = "transcribe_log.txt"
)

var (
	dir string

	mu          sync.Mutex
	diag        = zerolog.Nop()
	rotator     *lumberjack.Logger
	transcripts *os.File
)

// NetworkMetrics are the per-request timings reported by the engine client.
type NetworkMetrics struct {
	AudioLengthS float64
	UploadKB     float64
	ConnWaitMs   float64
	DNSMs        float64
	TLSMs        float64
	TTFBMs       float64
	TotalMs      float64
	ConnReused   bool
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	return nil
}

// Init opens both logs in Dir. Warnings and errors are echoed to stderr when
// it is a terminal.
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, transcribeFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening transcription log: %w", err)
	}
	transcripts = f
	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(dir, diagFileName),
		MaxSize:    10, // MB
		MaxBackups: 3,
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: rotator, TimeFormat: time.DateTime, NoColor: true}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = zerolog.MultiLevelWriter(w, warnOnly{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}})
	}
	diag = zerolog.New(w).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return nil
}

// warnOnly drops everything below warn level.
type warnOnly struct{ w io.Writer }

func (w warnOnly) Write(p []byte) (int, error) { return w.w.Write(p) }

func (w warnOnly) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.w.Write(p)
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	diag = zerolog.Nop()
	if rotator != nil {
		rotator.Close()
		rotator = nil
	}
	if transcripts != nil {
		transcripts.Close()
		transcripts = nil
	}
}

func logger() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := diag
	return &l
}

func Info(msg string)                   { logger().Info().Msg(msg) }
func Infof(format string, args ...any)  { logger().Info().Msgf(format, args...) }
func Warn(msg string)                   { logger().Warn().Msg(msg) }
func Warnf(format string, args ...any)  { logger().Warn().Msgf(format, args...) }
func Error(msg string)                  { logger().Error().Msg(msg) }
func Errorf(format string, args ...any) { logger().Error().Msgf(format, args...) }

func SessionStart(engine, hotkey, pasteMode string) {
	logger().Info().Str("engine", engine).Str("hotkey", hotkey).Str("paste", pasteMode).Msg("session_start")
}

func SessionEnd(count int) {
	logger().Info().Int("count", count).Msg("session_end")
}

func RecordingStop(durationS, peak float64, path string) {
	logger().Info().Float64("audio_s", durationS).Float64("peak", peak).Str("file", path).Msg("recording_stop")
}

func TranscriptionMetrics(m NetworkMetrics, engine, format string) {
	conn := "new"
	if m.ConnReused {
		conn = "reused"
	}
	logger().Info().
		Str("engine", engine).
		Str("format", format).
		Str("conn", conn).
		Float64("audio_s", m.AudioLengthS).
		Float64("upload_kb", m.UploadKB).
		Float64("conn_wait_ms", m.ConnWaitMs).
		Float64("dns_ms", m.DNSMs).
		Float64("tls_ms", m.TLSMs).
		Float64("ttfb_ms", m.TTFBMs).
		Float64("total_ms", m.TotalMs).
		Msg("transcription")
}

// TranscriptionText appends "<local time>\t[pid]\t<text>" to the transcription log.
func TranscriptionText(text string) {
	mu.Lock()
	defer mu.Unlock()
	if transcripts == nil {
		return
	}
	fmt.Fprintf(transcripts, "%s\t[%d]\t%s\n", time.Now().Format(time.DateTime), os.Getpid(), text)
}
