package transcriber

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KenKaminsky/voice-dictation/encoder"
)

type fakeServer struct {
	*httptest.Server
	calls  atomic.Int32
	fail   atomic.Int32 // number of upcoming requests to reject
	mu     sync.Mutex
	fields map[string]string
	file   []byte
	name   string
}

func newFakeServer(t *testing.T, text string) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		fs.calls.Add(1)
		if fs.fail.Load() > 0 {
			fs.fail.Add(-1)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"model not ready","type":"server_error"}}`))
			return
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		fs.mu.Lock()
		fs.fields = map[string]string{
			"model":    r.FormValue("model"),
			"language": r.FormValue("language"),
		}
		fs.file = data
		fs.name = hdr.Filename
		fs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(fs.Close)
	return fs
}

func TestNetworkMetricsSum(t *testing.T) {
	m := &NetworkMetrics{
		DNS:        1 * time.Millisecond,
		ConnWait:   2 * time.Millisecond,
		TCP:        3 * time.Millisecond,
		TLS:        4 * time.Millisecond,
		ReqHeaders: 5 * time.Millisecond,
		ReqBody:    6 * time.Millisecond,
		TTFB:       7 * time.Millisecond,
		Download:   8 * time.Millisecond,
	}
	if got, want := m.Sum(), 36*time.Millisecond; got != want {
		t.Errorf("Sum() = %v, want %v", got, want)
	}
}

func TestLocalTranscribe(t *testing.T) {
	srv := newFakeServer(t, "  Hello world.  ")
	eng := NewLocal(Config{URL: srv.URL + "/v1", Model: "tiny"})

	text, err := eng.Transcribe(context.Background(), make([]float32, 8000))
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hello world." {
		t.Errorf("text = %q", text)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.fields["model"] != "tiny" {
		t.Errorf("model = %q", srv.fields["model"])
	}
	if srv.fields["language"] != "en" {
		t.Errorf("language = %q, want default en", srv.fields["language"])
	}
	if srv.name != "audio.flac" {
		t.Errorf("filename = %q", srv.name)
	}
	if len(srv.file) < 4 || string(srv.file[:4]) != "fLaC" {
		t.Error("upload is not FLAC")
	}
}

func TestLocalNormalizesLoudInput(t *testing.T) {
	srv := newFakeServer(t, "x")
	eng := NewLocal(Config{URL: srv.URL + "/v1", Format: encoder.FormatWAV})

	samples := []float32{0, 2, -1, 0.5}
	if _, err := eng.Transcribe(context.Background(), samples); err != nil {
		t.Fatal(err)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.name != "audio.wav" {
		t.Fatalf("filename = %q", srv.name)
	}
	pcm := srv.file[44:]
	peak := int16(binary.LittleEndian.Uint16(pcm[2:]))
	if peak != 32767 {
		t.Errorf("peak sample = %d, want 32767", peak)
	}
}

func TestLocalEmptyAudioSkipsRequest(t *testing.T) {
	srv := newFakeServer(t, "x")
	eng := NewLocal(Config{URL: srv.URL + "/v1"})

	text, err := eng.Transcribe(context.Background(), nil)
	if err != nil || text != "" {
		t.Fatalf("got %q, %v", text, err)
	}
	if srv.calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", srv.calls.Load())
	}
}

func TestLocalLoadModelIdempotent(t *testing.T) {
	srv := newFakeServer(t, "")
	eng := NewLocal(Config{URL: srv.URL + "/v1"})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := eng.LoadModel(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if !eng.Loaded() {
		t.Fatal("not loaded")
	}
	if srv.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", srv.calls.Load())
	}
}

func TestLocalLoadModelRetry(t *testing.T) {
	srv := newFakeServer(t, "")
	srv.fail.Store(1)
	eng := NewLocal(Config{URL: srv.URL + "/v1"})

	err := eng.LoadModel(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("err = %v, want status in message", err)
	}
	if eng.Loaded() {
		t.Fatal("loaded after failure")
	}

	if err := eng.LoadModel(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !eng.Loaded() {
		t.Fatal("not loaded after retry")
	}
}

func TestLocalUnreachable(t *testing.T) {
	eng := NewLocal(Config{URL: "http://127.0.0.1:1/v1"})
	if _, err := eng.Transcribe(context.Background(), make([]float32, 10)); err == nil {
		t.Fatal("expected error")
	}
	if err := eng.Ping(); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestTracedClientRecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewTracedClient()
	m := &NetworkMetrics{}
	req, _ := http.NewRequestWithContext(withMetrics(context.Background(), m), "POST", srv.URL, strings.NewReader("abcd"))
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if m.Total <= 0 {
		t.Error("Total not recorded")
	}
	if m.UploadSize != 4 {
		t.Errorf("UploadSize = %d, want 4", m.UploadSize)
	}
}

func TestFakeEngine(t *testing.T) {
	f := NewFake("", errors.New("boom"))
	if _, err := f.Transcribe(context.Background(), []float32{1}); err == nil {
		t.Fatal("expected error")
	}
	f.SetLoadError(errors.New("no model"))
	if err := f.LoadModel(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	f.SetLoadError(nil)
	if err := f.LoadModel(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.LoadModel(context.Background())
	if f.Loads() != 2 || f.Calls() != 1 {
		t.Errorf("loads = %d, calls = %d", f.Loads(), f.Calls())
	}
}

func TestPingServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	if err := NewTracedClient().Ping(srv.URL); err == nil {
		t.Fatal("expected error for 503")
	}

	ok := httptest.NewServer(http.NotFoundHandler())
	defer ok.Close()
	if err := NewTracedClient().Ping(ok.URL); err != nil {
		t.Fatalf("404 should count as reachable: %v", err)
	}
}
