package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/envwatch/envwatch/internal/config"
	"github.com/envwatch/envwatch/internal/domain/alert"
	"github.com/envwatch/envwatch/internal/domain/check"
	"github.com/envwatch/envwatch/internal/obs"
)

// Runner owns one monitor's lifecycle: probe, alert, persist, sleep,
// forever. Iterations never overlap; the sleep strictly serializes a
// monitor's own checks. Runners share nothing but the fast index's id
// sequence and the connection pool underneath the durable log.
type Runner struct {
	log      *zap.Logger
	cfg      config.Monitor
	prober   Prober
	gate     Gate
	index    check.Index
	history  check.Log
	notifier alert.Notifier
	metrics  *Metrics
}

func NewRunner(
	log *zap.Logger,
	cfg config.Monitor,
	prober Prober,
	index check.Index,
	history check.Log,
	notifier alert.Notifier,
	metrics *Metrics,
) *Runner {
	return &Runner{
		log:      log.With(zap.String("monitor", cfg.Name)),
		cfg:      cfg,
		prober:   prober,
		index:    index,
		history:  history,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Run loops until the context is canceled or the fast index rejects an
// insert. A durable log failure is reported and the loop continues; it
// leaves a gap in the history while the index and alerting stay accurate.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("monitor started",
		zap.String("host", r.cfg.Host),
		zap.Duration("interval", r.cfg.Interval),
		zap.Duration("threshold", r.cfg.Threshold),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("monitor stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if err := r.iterate(ctx); err != nil {
			r.log.Error("monitor stopped", zap.Error(err))
			return err
		}

		timer.Reset(r.cfg.Interval)
	}
}

func (r *Runner) iterate(ctx context.Context) error {
	tr := otel.Tracer("monitor.runner")
	ctx, span := tr.Start(ctx, "monitor.check",
		trace.WithAttributes(
			attribute.String("monitor.name", r.cfg.Name),
			attribute.String("monitor.host", r.cfg.Host),
		),
	)
	defer span.End()
	log := obs.WithTrace(ctx, r.log)

	env := prometheus.Labels{"environment": r.cfg.Name}
	out := r.prober.Probe(ctx, r.cfg.Host, r.cfg.Threshold)

	r.metrics.Probes.With(env).Inc()
	r.metrics.Latency.With(env).Observe(float64(out.Duration) / 1000)
	if out.Success {
		r.metrics.Up.With(env).Inc()
	} else {
		r.metrics.Down.With(env).Inc()
	}

	if r.gate.Observe(out.Success) {
		r.metrics.Transitions.With(env).Inc()
		log.Info("health changed",
			zap.Bool("healthy", out.Success),
			zap.String("status", out.RawStatus),
			zap.Int64("latency_ms", out.Duration),
		)
		r.notifier.Notify(ctx, alert.Event{
			Monitor:   r.cfg.Name,
			Healthy:   out.Success,
			Duration:  out.Duration,
			RawStatus: out.RawStatus,
			Channels:  r.cfg.Channels,
		})
	}

	rec := check.Result{
		Environment: r.cfg.Name,
		Success:     out.Success,
		Duration:    out.Duration,
		Timestamp:   out.Timestamp,
	}

	id, err := r.index.Insert(rec)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("insert result: %w", err)
	}
	rec.ID = id

	if err := r.history.Insert(ctx, rec, out.RawStatus); err != nil {
		r.metrics.LogErrors.With(env).Inc()
		span.RecordError(err)
		log.Warn("insert check history", zap.Uint64("id", id), zap.Error(err))
	}

	log.Debug("check done",
		zap.Uint64("id", id),
		zap.Bool("healthy", out.Success),
		zap.String("status", out.RawStatus),
		zap.Int64("latency_ms", out.Duration),
	)
	return nil
}
