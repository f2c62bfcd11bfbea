package task

import "errors"

// ErrTaskRunning is returned by Kill when asked to terminate a task that is
// currently RUNNING or BLOCKED. Go provides no safe way to unwind an
// arbitrary goroutine out from under it, so a running task must observe its
// own cancellation and return from its entry function.
var ErrTaskRunning = errors.New("task: cannot kill a running or blocked task")
