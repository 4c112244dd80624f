package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/KenKaminsky/voice-dictation/encoder"
	"github.com/KenKaminsky/voice-dictation/log"
)

const (
	DefaultURL      = "http://127.0.0.1:8000/v1"
	DefaultModel    = "mlx-community/whisper-large-v3-turbo"
	DefaultLanguage = "en"
)

type Config struct {
	URL      string
	Model    string
	Language string
	Format   string // upload encoding, "flac" or "wav"
	APIKey   string
}

// Local talks to a speech model served on this machine through the OpenAI
// audio transcription API (whisper.cpp server, mlx-whisper server, LocalAI).
type Local struct {
	cfg    Config
	client *openai.Client
	http   *TracedClient

	loadMu sync.Mutex
	loaded atomic.Bool
}

func NewLocal(cfg Config) *Local {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Format == "" {
		cfg.Format = encoder.FormatFLAC
	}

	tc := NewTracedClient()
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.URL, "/")
	oc.HTTPClient = tc

	return &Local{
		cfg:    cfg,
		client: openai.NewClientWithConfig(oc),
		http:   tc,
	}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Model() string { return l.cfg.Model }

func (l *Local) Loaded() bool { return l.loaded.Load() }

// LoadModel warms the server up by transcribing one second of silence, which
// makes it load the model weights before the first real utterance.
func (l *Local) LoadModel(ctx context.Context) error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	if l.loaded.Load() {
		return nil
	}

	start := time.Now()
	log.Infof("loading model %s from %s", l.cfg.Model, l.cfg.URL)
	if _, err := l.transcribe(ctx, make([]float32, encoder.SampleRate)); err != nil {
		return fmt.Errorf("loading model %s: %w", l.cfg.Model, err)
	}
	l.loaded.Store(true)
	log.Infof("model loaded in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func (l *Local) Transcribe(ctx context.Context, samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	if p := encoder.Peak(samples); p > 1 {
		samples = encoder.Normalize(samples, 1)
	}
	text, err := l.transcribe(ctx, samples)
	if err != nil {
		return "", err
	}
	// the first successful call also counts as a load
	l.loaded.Store(true)
	return text, nil
}

func (l *Local) transcribe(ctx context.Context, samples []float32) (string, error) {
	data, err := encoder.EncodeAll(l.cfg.Format, encoder.ToInt16(samples))
	if err != nil {
		return "", fmt.Errorf("encoding audio: %w", err)
	}

	metrics := &NetworkMetrics{}
	resp, err := l.client.CreateTranscription(withMetrics(ctx, metrics), openai.AudioRequest{
		Model:    l.cfg.Model,
		FilePath: "audio." + l.cfg.Format,
		Reader:   bytes.NewReader(data),
		Language: l.cfg.Language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("engine error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("engine request: %w", err)
	}

	log.TranscriptionMetrics(log.NetworkMetrics{
		AudioLengthS: float64(len(samples)) / encoder.SampleRate,
		UploadKB:     float64(len(data)) / 1024,
		ConnWaitMs:   ms(metrics.ConnWait),
		DNSMs:        ms(metrics.DNS),
		TLSMs:        ms(metrics.TLS),
		TTFBMs:       ms(metrics.TTFB),
		TotalMs:      ms(metrics.Total),
		ConnReused:   metrics.ConnReused,
	}, l.Name(), l.cfg.Format)

	return strings.TrimSpace(resp.Text), nil
}

// Ping checks that the engine server is reachable.
func (l *Local) Ping() error {
	return l.http.Ping(strings.TrimRight(l.cfg.URL, "/") + "/models")
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
