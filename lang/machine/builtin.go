package machine

import "fmt"

// A Builtin wraps a Go function as a Callable, the way Starlark exposes its
// native functions (print, len, and so on) to interpreted code.
type Builtin struct {
	name string
	call func(th *Thread, args *Tuple) (Value, error)
}

var (
	_ Value    = (*Builtin)(nil)
	_ Callable = (*Builtin)(nil)
)

func NewBuiltin(name string, call func(th *Thread, args *Tuple) (Value, error)) *Builtin {
	return &Builtin{name: name, call: call}
}

func (b *Builtin) String() string { return fmt.Sprintf("<built-in function %s>", b.name) }
func (b *Builtin) Type() string   { return "builtin_function" }
func (b *Builtin) Name() string   { return b.name }
func (b *Builtin) CallInternal(th *Thread, args *Tuple) (Value, error) {
	return b.call(th, args)
}

func formatValue(v Value) string {
	switch v := v.(type) {
	case String:
		return string(v)
	case NilType:
		return "nil"
	default:
		return v.String()
	}
}

func builtinFormat(th *Thread, args *Tuple) (Value, error) {
	var sb []byte
	for i := 0; i < args.Len(); i++ {
		sb = append(sb, formatValue(args.Index(i))...)
	}
	return String(sb), nil
}

func builtinHash(th *Thread, args *Tuple) (Value, error) {
	if args.Len() != 1 {
		return nil, fmt.Errorf("hash: want 1 argument, got %d", args.Len())
	}
	return Int(HashValue(args.Index(0))), nil
}

func builtinCoroutine(th *Thread, args *Tuple) (Value, error) {
	if args.Len() == 0 {
		return nil, fmt.Errorf("coroutine: want at least 1 argument, got 0")
	}
	fn := args.Index(0)
	if _, ok := fn.(Callable); !ok {
		return nil, fmt.Errorf("coroutine: %s is not callable", fn.Type())
	}
	co := NewCoroutine(fn.String(), fn, 64)
	th.heap.track(co)
	return co, nil
}

func builtinResume(th *Thread, args *Tuple) (Value, error) {
	if args.Len() == 0 {
		return nil, fmt.Errorf("resume: want at least 1 argument, got 0")
	}
	co, ok := args.Index(0).(*Coroutine)
	if !ok {
		return nil, fmt.Errorf("resume: %s is not a coroutine", args.Index(0).Type())
	}
	rest := make([]Value, 0, args.Len()-1)
	for i := 1; i < args.Len(); i++ {
		rest = append(rest, args.Index(i))
	}
	return co.Resume(th, rest)
}

func builtinLen(th *Thread, args *Tuple) (Value, error) {
	if args.Len() != 1 {
		return nil, fmt.Errorf("len: want 1 argument, got %d", args.Len())
	}
	x := args.Index(0)
	switch x := x.(type) {
	case Sequence:
		return Int(x.Len()), nil
	case Indexable:
		return Int(x.Len()), nil
	}
	return nil, fmt.Errorf("len: %s has no length", x.Type())
}
