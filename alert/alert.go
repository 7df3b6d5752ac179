package alert

// Notifier delivers a human-readable message. Implementations are
// fire-and-forget: failures are logged, never propagated.
type Notifier interface {
	Notify(message string)
}

// Multi fans a message out to every configured transport.
type Multi struct {
	sinks []Notifier
}

func NewMulti(sinks ...Notifier) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Notify(message string) {
	for _, sink := range m.sinks {
		sink.Notify(message)
	}
}

// Close flushes any transport that buffers messages.
func (m *Multi) Close() {
	for _, sink := range m.sinks {
		if closer, ok := sink.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
