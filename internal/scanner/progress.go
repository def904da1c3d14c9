package scanner

// ProgressSink receives one notification per completed probe, for
// real-time reporting. The coordinator serializes the calls on its merge
// goroutine, so implementations need no locking of their own. No scan
// logic depends on what a sink does.
type ProgressSink interface {
	ProbeCompleted(address string, reachable bool)
}

// NopSink discards progress notifications.
type NopSink struct{}

// ProbeCompleted does nothing.
func (NopSink) ProbeCompleted(string, bool) {}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(address string, reachable bool)

// ProbeCompleted calls f.
func (f SinkFunc) ProbeCompleted(address string, reachable bool) {
	f(address, reachable)
}
