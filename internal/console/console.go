// Package console defines the three-hook UART contract the kernel talks
// to: putchar, getchar, poll. A board that never installs a real Sink
// still boots, since the default is a silent no-op — an unmapped optional
// device, not a missing required one.
package console

// Sink is the pluggable console backend. Implementations must be safe to
// call from kernel context with interrupts disabled, so Getchar and Poll
// must never block.
type Sink interface {
	// Putchar writes one character, discarding it if the backend has no
	// room (there is no backpressure signal in this ABI).
	Putchar(c byte)

	// Getchar returns the next buffered input byte, or a negative value
	// if none is available.
	Getchar() int

	// Poll returns non-zero if Getchar would return a byte right now.
	Poll() int
}

// Null is the default Sink: every write is discarded, no input is ever
// available. Installed automatically until a board calls Install.
type Null struct{}

func (Null) Putchar(byte) {}
func (Null) Getchar() int { return -1 }
func (Null) Poll() int    { return 0 }

var active Sink = Null{}

// Install replaces the active console sink. Passing nil restores Null.
func Install(s Sink) {
	if s == nil {
		s = Null{}
	}

	active = s
}

// Active returns the currently installed sink.
func Active() Sink { return active }
