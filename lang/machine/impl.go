package machine

import "fmt"

// Call calls the function or Callable value fn with the given positional
// arguments, pushing and popping a Frame on thread's call stack around the
// invocation.
func Call(thread *Thread, fn Value, args *Tuple) (Value, error) {
	c, ok := fn.(Callable)
	if !ok {
		return nil, fmt.Errorf("invalid call of non-function (%s)", fn.Type())
	}

	if thread.ctx == nil {
		thread.init()
	}
	if thread.MaxCallStackDepth > 0 && len(thread.callStack) >= thread.MaxCallStackDepth {
		thread.cancelled.Store(true)
		return nil, fmt.Errorf("call stack depth exceeded (max %d)", thread.MaxCallStackDepth)
	}

	fr := &Frame{callable: c}
	thread.callStack = append(thread.callStack, fr)
	defer func() {
		thread.callStack = thread.callStack[:len(thread.callStack)-1]
	}()

	// Every call also pushes onto the thread's own CoroutineStack, alongside
	// the native Go call stack used to drive the interpreter loop. This
	// keeps the tagged-word stack (and its growth/relocation machinery)
	// genuinely exercised by ordinary function calls, not just by code that
	// explicitly spawns a Coroutine.
	var coroArgs []Value
	for i := 0; i < args.Len(); i++ {
		coroArgs = append(coroArgs, args.Index(i))
	}
	thread.coro.PushFrame(c, coroArgs, 0)
	defer thread.coro.PopFrame()

	result, err := c.CallInternal(thread, args)
	if result == nil && err == nil {
		err = fmt.Errorf("internal error: nil (not Nil) returned from %s", fn)
	}
	return result, err
}
