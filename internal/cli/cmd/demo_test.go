package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sysprog21/linmo/internal/console"
	"github.com/sysprog21/linmo/internal/log"
)

// fakeSink feeds a fixed byte sequence to the demo's poll loop, recording
// whatever Putchar echoes back.
type fakeSink struct {
	in      []byte
	written []byte
}

func (f *fakeSink) Putchar(c byte) { f.written = append(f.written, c) }

func (f *fakeSink) Getchar() int {
	if len(f.in) == 0 {
		return -1
	}

	c := f.in[0]
	f.in = f.in[1:]

	return int(c)
}

func (f *fakeSink) Poll() int {
	if len(f.in) == 0 {
		return 0
	}

	return 1
}

// TestDemoEchoesInstalledConsoleInput installs a fake console.Sink,
// feeding it a short input, and checks the demo task echoes it back
// before its deadline elapses. console.Install is global state, so this
// test does not run in parallel with others touching package console.
func TestDemoEchoesInstalledConsoleInput(t *testing.T) {
	fake := &fakeSink{in: []byte("hi")}
	console.Install(fake)

	defer console.Install(nil)

	var out bytes.Buffer

	d := &demo{seconds: 1}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if code := d.Run(ctx, nil, &out, log.DefaultLogger()); code != 0 {
		t.Fatalf("Run returned %d, want 0", code)
	}

	if string(fake.written) != "hi" {
		t.Fatalf("echoed %q, want %q", fake.written, "hi")
	}
}
