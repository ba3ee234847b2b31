package game

// Latch is a count-down completion latch: it fires its callback exactly
// once, after Done has been called count times. It models the "compact only
// after every removal animation finished" handshake without closures over
// mutable loop counters. Single-threaded by design, like the rest of the
// core; the host serializes its callbacks.
type Latch struct {
	remaining int
	fire      func()
	fired     bool
}

// NewLatch creates a latch expecting count completions. A count <= 0 fires
// immediately.
func NewLatch(count int, fire func()) *Latch {
	l := &Latch{remaining: count, fire: fire}
	if count <= 0 {
		l.trigger()
	}
	return l
}

// Done signals one completion. Extra calls after the latch has fired are
// ignored.
func (l *Latch) Done() {
	if l.fired {
		return
	}
	l.remaining--
	if l.remaining <= 0 {
		l.trigger()
	}
}

// Remaining returns the number of outstanding completions.
func (l *Latch) Remaining() int {
	if l.fired {
		return 0
	}
	return l.remaining
}

func (l *Latch) trigger() {
	l.fired = true
	if l.fire != nil {
		l.fire()
	}
}
