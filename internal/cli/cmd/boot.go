package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/sysprog21/linmo/internal/cli"
	"github.com/sysprog21/linmo/internal/kernel"
	"github.com/sysprog21/linmo/internal/log"
	"github.com/sysprog21/linmo/internal/syscall"
	"github.com/sysprog21/linmo/internal/task"
)

// Boot is a smoke-test command: it boots a kernel with a handful of
// synthetic tasks exercising the scheduler, a mutex, and a message queue,
// then reports what ran.
func Boot() cli.Command {
	return &boot{log: log.DefaultLogger()}
}

type boot struct {
	log   *log.Logger
	ticks int
}

func (boot) Description() string {
	return "boot a kernel and run a synthetic task mix"
}

func (boot) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
boot [ -ticks N ]

Boot a kernel against the default board layout, spawn a small mix of
tasks exercising the scheduler, a mutex, and a message queue, drive N
simulated timer ticks, then report the outcome.`)

	return err
}

func (b *boot) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("boot", flag.ExitOnError)
	fs.IntVar(&b.ticks, "ticks", 10, "number of simulated timer ticks to drive")

	return fs
}

func (b *boot) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	k := kernel.New()
	layout := defaultBoardLayout()

	var produced, consumed int

	err := k.Boot(layout, func() {
		mutexHandle := k.NewMutex()
		queueHandle := k.NewQueue(4)

		k.Sched.Spawn(func() {
			for i := 0; i < 4; i++ {
				k.Invoke(syscall.SysMutexLock, mutexHandle, 0, 0)
				produced++
				k.Invoke(syscall.SysMutexUnlock, mutexHandle, 0, 0)
				k.Invoke(syscall.SysMQSend, queueHandle, uint32(i), 0)
			}
		}, task.PriorityNormal)

		k.Sched.Spawn(func() {
			for i := 0; i < 4; i++ {
				k.Invoke(syscall.SysMQRecv, queueHandle, 0, 0)
				consumed++
			}
		}, task.PriorityLow)
	})
	if err != nil {
		logger.Error("boot failed", "err", err)
		return 1
	}

	deadline := time.After(time.Second)

loop:
	for i := 0; i < b.ticks; i++ {
		select {
		case <-ctx.Done():
			break loop
		case <-deadline:
			break loop
		default:
		}

		k.Sched.Tick()
	}

	k.Sched.Wait()

	fmt.Fprintf(out, "produced=%d consumed=%d ticks=%d\n", produced, consumed, b.ticks)

	return 0
}
