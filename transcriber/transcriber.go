package transcriber

import (
	"context"
	"time"
)

// Engine turns 16 kHz mono samples into text. Implementations must allow
// concurrent LoadModel calls; Transcribe calls are serialized by the caller.
type Engine interface {
	Name() string
	// LoadModel prepares the model. It is a no-op once it has succeeded and
	// may be retried after a failure.
	LoadModel(ctx context.Context) error
	Loaded() bool
	// Transcribe returns the trimmed text, or "" when nothing was recognized.
	Transcribe(ctx context.Context, samples []float32) (string, error)
}

type NetworkMetrics struct {
	DNS        time.Duration
	ConnWait   time.Duration
	TCP        time.Duration
	TLS        time.Duration
	ReqHeaders time.Duration
	ReqBody    time.Duration
	TTFB       time.Duration
	Download   time.Duration
	Total      time.Duration
	UploadSize int
	ConnReused bool
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

type metricsKey struct{}

// withMetrics returns a context that makes TracedClient record into m.
func withMetrics(ctx context.Context, m *NetworkMetrics) context.Context {
	return context.WithValue(ctx, metricsKey{}, m)
}

func metricsFrom(ctx context.Context) *NetworkMetrics {
	m, _ := ctx.Value(metricsKey{}).(*NetworkMetrics)
	return m
}
