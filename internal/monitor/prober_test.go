package monitor

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/envwatch/envwatch/internal/config"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		elapsed   time.Duration
		threshold time.Duration
		want      bool
	}{
		{name: "fast 200", code: 200, elapsed: 50 * time.Millisecond, threshold: 150 * time.Millisecond, want: true},
		{name: "slow 200", code: 200, elapsed: 200 * time.Millisecond, threshold: 150 * time.Millisecond, want: false},
		{name: "exactly at threshold", code: 200, elapsed: 150 * time.Millisecond, threshold: 150 * time.Millisecond, want: false},
		{name: "fast 500", code: 500, elapsed: 50 * time.Millisecond, threshold: 150 * time.Millisecond, want: false},
		{name: "fast 301", code: 301, elapsed: 50 * time.Millisecond, threshold: 150 * time.Millisecond, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.code, tt.elapsed, tt.threshold))
		})
	}
}

func newTestProber() *HTTPProber {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	return &HTTPProber{Client: client, UserAgent: "envwatch-test"}
}

func TestHTTPProber_Healthy(t *testing.T) {
	p := newTestProber()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "http://svc.local/health",
		httpmock.NewStringResponder(http.StatusOK, "ok"))

	out := p.Probe(context.Background(), "http://svc.local/health", time.Second)

	assert.True(t, out.Success)
	assert.Equal(t, "200", out.RawStatus)
	assert.GreaterOrEqual(t, out.Duration, int64(0))
	assert.NotZero(t, out.Timestamp)
}

func TestHTTPProber_ServerError(t *testing.T) {
	p := newTestProber()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "http://svc.local/health",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	out := p.Probe(context.Background(), "http://svc.local/health", time.Second)

	assert.False(t, out.Success)
	assert.Equal(t, "500", out.RawStatus)
}

func TestHTTPProber_Timeout(t *testing.T) {
	p := newTestProber()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "http://svc.local/health",
		httpmock.NewStringResponder(http.StatusOK, "ok").Delay(200*time.Millisecond))

	out := p.Probe(context.Background(), "http://svc.local/health", 20*time.Millisecond)

	assert.False(t, out.Success)
	assert.Equal(t, RawStatusErr, out.RawStatus)
	assert.GreaterOrEqual(t, out.Duration, int64(20))
}

func TestHTTPProber_ConnectionError(t *testing.T) {
	p := newTestProber()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "http://svc.local/health",
		httpmock.NewErrorResponder(assert.AnError))

	out := p.Probe(context.Background(), "http://svc.local/health", time.Second)

	assert.False(t, out.Success)
	assert.Equal(t, RawStatusErr, out.RawStatus)
}

func TestNewHTTPProber_NoRedirectFollow(t *testing.T) {
	p := NewHTTPProber(config.HTTPProbe{UserAgent: "envwatch/1.0", FollowRedirects: false, VerifyTLS: true})

	assert.NotNil(t, p.Client.CheckRedirect)
	assert.Equal(t, "envwatch/1.0", p.UserAgent)
}
