// Package hostcon adapts a Unix terminal into the kernel's console.Sink, so
// a host binary can stand in for the board's serial UART.
package hostcon

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/sysprog21/linmo/internal/console"
)

// ErrNoTTY is returned if standard input is not a terminal.
var ErrNoTTY = errors.New("hostcon: stdin is not a TTY")

// Terminal is a console.Sink backed by the process's own stdin/stdout, put
// into raw mode so a remote task's Getchar/Putchar round trip behaves the
// way a bare UART would: no line buffering, no local echo.
type Terminal struct {
	fd    int
	saved *term.State
	in    *bufio.Reader
	out   *os.File
	keyCh chan byte
}

// Open puts stdin into raw mode and starts a background reader that feeds
// Getchar. Callers must call Restore when done to return the terminal to
// its original state.
func Open() (*Terminal, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTTY, err)
	}

	t := &Terminal{
		fd:    fd,
		saved: saved,
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		keyCh: make(chan byte, 16),
	}

	if err := t.setBlocking(1, 0); err != nil {
		_ = term.Restore(fd, saved)
		return nil, err
	}

	go t.readLoop()

	return t, nil
}

func (t *Terminal) setBlocking(vmin, vtime byte) error {
	_ = syscall.SetNonblock(t.fd, false)

	termIO, err := unix.IoctlGetTermios(t.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	return unix.IoctlSetTermios(t.fd, setTermiosIoctl, termIO)
}

// readLoop blocks on stdin one byte at a time. Restore forces it to
// return by setting stdin's read deadline into the past.
func (t *Terminal) readLoop() {
	for {
		b, err := t.in.ReadByte()
		if err != nil {
			close(t.keyCh)
			return
		}

		t.keyCh <- b
	}
}

// Putchar satisfies console.Sink: it writes a single raw byte to stdout.
func (t *Terminal) Putchar(c byte) {
	_, _ = t.out.Write([]byte{c})
}

// Getchar satisfies console.Sink: it returns the next buffered input byte,
// or -1 if nothing has arrived yet.
func (t *Terminal) Getchar() int {
	select {
	case b, ok := <-t.keyCh:
		if !ok {
			return -1
		}

		return int(b)
	default:
		return -1
	}
}

// Poll satisfies console.Sink: it reports how many bytes are currently
// buffered and ready for Getchar.
func (t *Terminal) Poll() int {
	return len(t.keyCh)
}

// Restore returns the terminal to its original (cooked) state and
// unblocks the background reader by forcing stdin's pending read to
// return.
func (t *Terminal) Restore() {
	_ = os.Stdin.SetReadDeadline(time.Now())
	_ = term.Restore(t.fd, t.saved)
}

var _ console.Sink = (*Terminal)(nil)
