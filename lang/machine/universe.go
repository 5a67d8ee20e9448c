package machine

// Universe defines the set of universal built-ins core to the language, such
// as Nil and True. This should not be modified, so that the language built-ins
// are always available. Use the Thread.Predeclared to add to the set of
// built-ins available to a program.
var Universe = map[string]Value{
	"nil":       Nil,
	"true":      True,
	"false":     False,
	"format":    NewBuiltin("format", builtinFormat),
	"hash":      NewBuiltin("hash", builtinHash),
	"len":       NewBuiltin("len", builtinLen),
	"coroutine": NewBuiltin("coroutine", builtinCoroutine),
	"resume":    NewBuiltin("resume", builtinResume),
}

func IsUniverse(name string) bool {
	_, ok := Universe[name]
	return ok
}
