package transcriber

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

const pingTimeout = 3 * time.Second

// TracedClient is the HTTP client handed to the OpenAI SDK. Requests whose
// context carries a NetworkMetrics get every phase timed into it; keep-alive
// is kept on so consecutive dictations reuse one connection.
type TracedClient struct {
	client *http.Client
}

func NewTracedClient() *TracedClient {
	return &TracedClient{client: &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     2 * time.Minute,
			ForceAttemptHTTP2:   true,
		},
	}}
}

// phaseTimer turns httptrace callbacks into NetworkMetrics durations.
type phaseTimer struct {
	m *NetworkMetrics

	getConn, dns, connect, handshake time.Time
	gotConn, headers, body, first    time.Time
}

func (p *phaseTimer) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn: func(string) { p.getConn = time.Now() },
		GotConn: func(info httptrace.GotConnInfo) {
			p.gotConn = time.Now()
			p.m.ConnWait = p.gotConn.Sub(p.getConn)
			p.m.ConnReused = info.Reused
		},
		DNSStart:          func(httptrace.DNSStartInfo) { p.dns = time.Now() },
		DNSDone:           func(httptrace.DNSDoneInfo) { p.m.DNS = time.Since(p.dns) },
		ConnectStart:      func(string, string) { p.connect = time.Now() },
		ConnectDone:       func(string, string, error) { p.m.TCP = time.Since(p.connect) },
		TLSHandshakeStart: func() { p.handshake = time.Now() },
		TLSHandshakeDone:  func(tls.ConnectionState, error) { p.m.TLS = time.Since(p.handshake) },
		WroteHeaders: func() {
			p.headers = time.Now()
			p.m.ReqHeaders = p.headers.Sub(p.gotConn)
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			p.body = time.Now()
			p.m.ReqBody = p.body.Sub(p.headers)
		},
		GotFirstResponseByte: func() {
			p.first = time.Now()
			p.m.TTFB = p.first.Sub(p.body)
		},
	}
}

func (c *TracedClient) Do(req *http.Request) (*http.Response, error) {
	m := metricsFrom(req.Context())
	if m == nil {
		return c.client.Do(req)
	}
	m.UploadSize = max(int(req.ContentLength), 0)

	timer := &phaseTimer{m: m}
	start := time.Now()
	resp, err := c.client.Do(req.WithContext(httptrace.WithClientTrace(req.Context(), timer.trace())))
	if err != nil {
		return nil, err
	}

	// The body is buffered here so download time lands in the metrics rather
	// than in the SDK's JSON decoding.
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if !timer.first.IsZero() {
		m.Download = time.Since(timer.first)
	}
	m.Total = time.Since(start)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// Ping reports whether a server answers at url. Any response below 500
// counts, so servers without a /models route still pass.
func (c *TracedClient) Ping(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
