package monitor

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/envwatch/envwatch/internal/config"
)

// RawStatusErr marks probes that never produced an HTTP status: DNS
// failures, refused connections, timeouts. Distinct from any real code.
const RawStatusErr = "ERR"

// Outcome is the classified result of a single probe. A probe never
// fails with an error; every network fault is folded into the outcome.
type Outcome struct {
	Success   bool
	Duration  int64  // elapsed, milliseconds
	Timestamp int64  // probe start, milliseconds since epoch
	RawStatus string // numeric HTTP status, or RawStatusErr
}

// Prober performs one timed HTTP GET and classifies the result.
type Prober interface {
	Probe(ctx context.Context, host string, threshold time.Duration) Outcome
}

var _ Prober = (*HTTPProber)(nil)

type HTTPProber struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPProber builds a prober sharing one HTTP client across all
// monitors. The per-probe deadline comes from each monitor's threshold,
// not from the client, so no client-level timeout is set.
func NewHTTPProber(cfg config.HTTPProbe) *HTTPProber {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}

	client := &http.Client{
		Transport: otelhttp.NewTransport(transport),
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &HTTPProber{Client: client, UserAgent: cfg.UserAgent}
}

func (p *HTTPProber) Probe(ctx context.Context, host string, threshold time.Duration) Outcome {
	start := time.Now()
	out := Outcome{Timestamp: start.UnixMilli(), RawStatus: RawStatusErr}

	rctx, cancel := context.WithTimeout(ctx, threshold)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, host, nil)
	if err != nil {
		out.Duration = time.Since(start).Milliseconds()
		return out
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := p.Client.Do(req)
	elapsed := time.Since(start)
	out.Duration = elapsed.Milliseconds()
	if err != nil {
		return out
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	out.RawStatus = strconv.Itoa(resp.StatusCode)
	out.Success = classify(resp.StatusCode, elapsed, threshold)
	return out
}

func classify(code int, elapsed, threshold time.Duration) bool {
	return code == http.StatusOK && elapsed < threshold
}
