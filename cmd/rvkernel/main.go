// Command rvkernel is a host model of a preemptive real-time kernel for
// 32-bit RISC-V: boot sequencing, PMP-backed memory protection, a
// cooperative/priority scheduler, and the synchronization primitives and
// syscall gate an application task would use.
package main

import (
	"context"
	"os"

	"github.com/sysprog21/linmo/cmd/internal/hostcon"
	"github.com/sysprog21/linmo/internal/cli"
	"github.com/sysprog21/linmo/internal/cli/cmd"
	"github.com/sysprog21/linmo/internal/console"
)

var commands = []cli.Command{
	cmd.Boot(),
	cmd.PMPInfo(),
	cmd.Demo(),
}

// Entry point.
func main() {
	// demo is the only command that reads the console; the terminal
	// sink is installed for every command when stdin is a terminal, and
	// console.Null stays in place otherwise. A non-terminal stdin (a
	// pipe, a CI runner) is not an error here.
	if term, err := hostcon.Open(); err == nil {
		console.Install(term)
		defer term.Restore()
	}

	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
