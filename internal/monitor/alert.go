package monitor

// Gate is the per-monitor edge-triggered alert state machine. alerting
// means "last known state was unhealthy"; the zero value starts healthy.
// A Gate is owned exclusively by its monitor's runner goroutine and
// needs no locking.
type Gate struct {
	alerting bool
}

// Observe feeds one outcome into the gate and reports whether a
// notification fires. It fires exactly once per edge in the outcome
// sequence: healthy monitors going down, alerting monitors recovering.
// After the call alerting is always !ok.
func (g *Gate) Observe(ok bool) (fire bool) {
	fire = g.alerting == ok
	g.alerting = !ok
	return fire
}

// Alerting reports the last known state.
func (g *Gate) Alerting() bool { return g.alerting }
