package alert

import "fmt"

// Event is one edge-triggered health transition of a monitor.
type Event struct {
	Monitor   string
	Healthy   bool
	Duration  int64
	RawStatus string
	Channels  []string
}

// Text renders the message delivered to every channel.
func (e Event) Text() string {
	state := "unhealthy"
	if e.Healthy {
		state = "healthy"
	}
	return fmt.Sprintf("%s %s: status %s after %d ms", e.Monitor, state, e.RawStatus, e.Duration)
}
