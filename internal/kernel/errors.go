package kernel

import (
	"fmt"

	"github.com/sysprog21/linmo/internal/syscall"
)

// PanicError is what Kernel.Panic raises: a terminal, non-recoverable
// kernel fault carrying a one-word result code plus the cause and PC that
// triggered it, for diagnostics.
type PanicError struct {
	Code  uint32
	Cause uint32
	PC    uint32
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("kernel panic: code=%d cause=%#x pc=%#x", e.Code, e.Cause, e.PC)
}

// Result codes, aliased from package syscall so callers outside this
// package never need to import syscall just to compare against ErrOK.
const (
	ErrOK               = syscall.ErrOK
	ErrFail             = syscall.ErrFail
	ErrTimeout          = syscall.ErrTimeout
	ErrTaskBusy         = syscall.ErrTaskBusy
	ErrNotOwner         = syscall.ErrNotOwner
	ErrSemOperation     = syscall.ErrSemOperation
	ErrMQNotEmpty       = syscall.ErrMQNotEmpty
	ErrPMPInvalidRegion = syscall.ErrPMPInvalidRegion
	ErrPMPAddrRange     = syscall.ErrPMPAddrRange
	ErrPMPLocked        = syscall.ErrPMPLocked
	ErrNoTasks          = syscall.ErrNoTasks
	ErrUnknown          = syscall.ErrUnknown
)
