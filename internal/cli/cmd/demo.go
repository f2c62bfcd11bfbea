package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/sysprog21/linmo/internal/cli"
	"github.com/sysprog21/linmo/internal/console"
	"github.com/sysprog21/linmo/internal/kernel"
	"github.com/sysprog21/linmo/internal/log"
	"github.com/sysprog21/linmo/internal/task"
)

// Demo is a demonstration command: it boots a kernel and runs a task that
// echoes whatever the installed console.Sink delivers, until the context
// is cancelled. It never installs a Sink itself — main is responsible for
// that, via console.Install, before Execute reaches here — so the demo
// degrades gracefully to silence if stdin is not a terminal.
func Demo() cli.Command {
	return new(demo)
}

type demo struct {
	seconds int
}

func (demo) Description() string {
	return "run an echo task against the installed console"
}

func (d demo) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
demo [ -seconds N ]

Boot a kernel, spawn a task that polls the installed console for input
and echoes it back, and run for N seconds (default 10) or until
interrupted.`)

	return err
}

func (d *demo) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	fs.IntVar(&d.seconds, "seconds", 10, "how long to run before exiting")

	return fs
}

func (d demo) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(d.seconds)*time.Second)
	defer cancel()

	logger.Info("booting demo kernel")

	k := kernel.New()
	layout := defaultBoardLayout()

	done := make(chan struct{})

	err := k.Boot(layout, func() {
		k.Sched.Spawn(func() {
			sink := console.Active()

			fmt.Fprintln(out, "demo running; type to echo, Ctrl-C to quit")

			for {
				select {
				case <-ctx.Done():
					close(done)
					return
				default:
				}

				if sink.Poll() == 0 {
					time.Sleep(20 * time.Millisecond)
					continue
				}

				c := sink.Getchar()
				if c < 0 {
					continue
				}

				sink.Putchar(byte(c))

				if c == '\r' || c == '\n' {
					sink.Putchar('\n')
				}
			}
		}, task.PriorityNormal)
	})
	if err != nil {
		logger.Error("boot failed", "err", err)
		return 1
	}

	<-done

	logger.Info("demo completed")

	return 0
}
