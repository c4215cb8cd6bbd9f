package config

import (
	"fmt"
	"time"

	"github.com/envwatch/envwatch/internal/obs"
	pg "github.com/envwatch/envwatch/internal/repository/postgres"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultThreshold = 1500 * time.Millisecond
)

// Monitor is one configured target. Immutable for the process lifetime.
type Monitor struct {
	Name      string        `mapstructure:"-"`
	Host      string        `mapstructure:"host"`
	Interval  time.Duration `mapstructure:"interval"`
	Threshold time.Duration `mapstructure:"threshold"`
	Alert     []string      `mapstructure:"alert"`

	// Channels holds the webhook URLs resolved from the Alert keys,
	// in configured order. Filled by Load.
	Channels []string `mapstructure:"-"`
}

type HTTPProbe struct {
	UserAgent       string `mapstructure:"user_agent"`
	FollowRedirects bool   `mapstructure:"follow_redirects"`
	VerifyTLS       bool   `mapstructure:"verify_tls"`
}

type Notify struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type Server struct {
	StatusAddr      string        `mapstructure:"status_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type Index struct {
	MaxEntries int `mapstructure:"max_entries"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (lc *Log) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  lc.Level,
		Pretty: lc.Pretty,
		App:    "envwatch",
	}
}

type Config struct {
	Monitors map[string]*Monitor `mapstructure:"monitors"`
	Channels map[string]string   `mapstructure:"channels"`
	DB       pg.Config           `mapstructure:"db"`
	HTTP     HTTPProbe           `mapstructure:"http"`
	Notify   Notify              `mapstructure:"notify"`
	Server   Server              `mapstructure:"server"`
	Index    Index               `mapstructure:"index"`
	OTEL     OTEL                `mapstructure:"otel"`
	Log      Log                 `mapstructure:"log"`
}

// normalize fills the per-monitor defaults and resolves alert channel
// keys to webhook URLs. An unknown key is a configuration error.
func (c *Config) normalize() error {
	for name, m := range c.Monitors {
		m.Name = name
		if m.Host == "" {
			return fmt.Errorf("monitor %q: host is required", name)
		}
		if m.Interval <= 0 {
			m.Interval = DefaultInterval
		}
		if m.Threshold <= 0 {
			m.Threshold = DefaultThreshold
		}
		m.Channels = make([]string, 0, len(m.Alert))
		for _, key := range m.Alert {
			url, ok := c.Channels[key]
			if !ok {
				return fmt.Errorf("monitor %q: unknown alert channel %q", name, key)
			}
			m.Channels = append(m.Channels, url)
		}
	}
	return nil
}
