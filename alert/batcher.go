package alert

import (
	"sync"
	"time"
)

// Batcher accumulates messages and delivers them as one batch once no new
// message has arrived for the quiet period. It owns both the buffer and the
// timer, so delivery timing is explicit rather than a hidden library behavior.
type Batcher struct {
	mu       sync.Mutex
	messages []string
	timer    *time.Timer
	quiet    time.Duration
	deliver  func(batch []string)
	closed   bool
}

func NewBatcher(quiet time.Duration, deliver func(batch []string)) *Batcher {
	return &Batcher{
		quiet:   quiet,
		deliver: deliver,
	}
}

// Push appends a message and re-arms the quiet-period timer.
func (b *Batcher) Push(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.messages = append(b.messages, message)

	if b.timer == nil {
		b.timer = time.AfterFunc(b.quiet, b.Flush)
	} else {
		b.timer.Reset(b.quiet)
	}
}

// Flush delivers everything buffered so far and resets the buffer.
func (b *Batcher) Flush() {
	b.mu.Lock()
	batch := b.messages
	b.messages = nil
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	b.deliver(batch)
}

// Close flushes pending messages and drops anything pushed afterwards.
func (b *Batcher) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.Flush()
}
