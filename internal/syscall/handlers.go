package syscall

import "github.com/sysprog21/linmo/internal/task"

func registerStandard(g *Gate) {
	g.Register(SysYield, sysYield)
	g.Register(SysTaskSpawn, sysTaskSpawn)
	g.Register(SysTaskKill, sysTaskKill)
	g.Register(SysTaskID, sysTaskID)
	g.Register(SysSleep, sysSleep)
	g.Register(SysMutexCreate, sysMutexCreate)
	g.Register(SysMutexLock, sysMutexLock)
	g.Register(SysMutexTryLock, sysMutexTryLock)
	g.Register(SysMutexUnlock, sysMutexUnlock)
	g.Register(SysCondCreate, sysCondCreate)
	g.Register(SysCondWait, sysCondWait)
	g.Register(SysCondSignal, sysCondSignal)
	g.Register(SysCondBroadcast, sysCondBroadcast)
	g.Register(SysMQCreate, sysMQCreate)
	g.Register(SysMQSend, sysMQSend)
	g.Register(SysMQRecv, sysMQRecv)
	g.Register(SysMQPeek, sysMQPeek)
}

func sysYield(ctx Context, self *task.Task, _, _, _ uint32) uint32 {
	ctx.Scheduler().Yield(self)

	return ErrOK
}

// sysTaskSpawn has no entry function to hand the new task in this ABI (a
// real syscall can only pass integers), so a0 is taken as a priority
// level and the new task runs an empty entry — enough to exercise
// creation and id allocation from a handler; real application code spawns
// tasks directly through task.Scheduler.Spawn, not through this syscall.
func sysTaskSpawn(ctx Context, _ *task.Task, a0, _, _ uint32) uint32 {
	t := ctx.Spawn(nil, task.Priority(a0))

	return uint32(t.ID)
}

func sysTaskKill(ctx Context, _ *task.Task, a0, _, _ uint32) uint32 {
	target, ok := ctx.Scheduler().Lookup(task.ID(a0))
	if !ok {
		return ErrFail
	}

	return CodeFromError(ctx.Scheduler().Kill(target))
}

func sysTaskID(_ Context, self *task.Task, _, _, _ uint32) uint32 {
	return uint32(self.ID)
}

func sysSleep(ctx Context, self *task.Task, a0, _, _ uint32) uint32 {
	self.State = task.StateBlocked
	ctx.Scheduler().Delay(self, int(a0), nil)

	return ErrOK
}

func sysMutexCreate(ctx Context, _ *task.Task, _, _, _ uint32) uint32 {
	return ctx.NewMutex()
}

func sysMutexLock(ctx Context, self *task.Task, a0, _, _ uint32) uint32 {
	m, ok := ctx.Mutex(a0)
	if !ok {
		return ErrFail
	}

	return CodeFromError(m.Lock(self))
}

func sysMutexTryLock(ctx Context, self *task.Task, a0, _, _ uint32) uint32 {
	m, ok := ctx.Mutex(a0)
	if !ok {
		return ErrFail
	}

	return CodeFromError(m.TryLock(self))
}

func sysMutexUnlock(ctx Context, self *task.Task, a0, _, _ uint32) uint32 {
	m, ok := ctx.Mutex(a0)
	if !ok {
		return ErrFail
	}

	return CodeFromError(m.Unlock(self))
}

func sysCondCreate(ctx Context, _ *task.Task, _, _, _ uint32) uint32 {
	return ctx.NewCond()
}

// sysCondWait expects a0 = cond handle, a1 = mutex handle.
func sysCondWait(ctx Context, self *task.Task, a0, a1, _ uint32) uint32 {
	c, ok := ctx.Cond(a0)
	if !ok {
		return ErrFail
	}

	m, ok := ctx.Mutex(a1)
	if !ok {
		return ErrFail
	}

	return CodeFromError(c.Wait(self, m))
}

func sysCondSignal(ctx Context, self *task.Task, a0, _, _ uint32) uint32 {
	c, ok := ctx.Cond(a0)
	if !ok {
		return ErrFail
	}

	c.Signal(self)

	return ErrOK
}

func sysCondBroadcast(ctx Context, self *task.Task, a0, _, _ uint32) uint32 {
	c, ok := ctx.Cond(a0)
	if !ok {
		return ErrFail
	}

	c.Broadcast(self)

	return ErrOK
}

func sysMQCreate(ctx Context, _ *task.Task, a0, _, _ uint32) uint32 {
	return ctx.NewQueue(int(a0))
}

func sysMQSend(ctx Context, _ *task.Task, a0, a1, _ uint32) uint32 {
	q, ok := ctx.Queue(a0)
	if !ok {
		return ErrFail
	}

	return CodeFromError(q.Enqueue(a1))
}

func sysMQRecv(ctx Context, _ *task.Task, a0, _, _ uint32) uint32 {
	q, ok := ctx.Queue(a0)
	if !ok {
		return ErrFail
	}

	v, err := q.Dequeue()
	if err != nil {
		return CodeFromError(err)
	}

	return v
}

func sysMQPeek(ctx Context, _ *task.Task, a0, _, _ uint32) uint32 {
	q, ok := ctx.Queue(a0)
	if !ok {
		return ErrFail
	}

	v, err := q.Peek()
	if err != nil {
		return CodeFromError(err)
	}

	return v
}
