package maincmd

import (
	"context"
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/compiler"
	"github.com/mbeckem/tiro-sub007/lang/irgen"
	"github.com/mbeckem/tiro-sub007/lang/machine"
	"github.com/mna/mainer"
)

// compileFiles runs every phase up to and including bytecode generation:
// parse, resolve, lower to IR (lang/irgen) and generate bytecode
// (lang/compiler). toplevelName is the name of the chunk whose own
// initialization code becomes the Program's Toplevel function; with a
// single input file this is unambiguous, so the CLI always uses the
// first file's chunk name.
func compileFiles(files []string) (*compiler.Program, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one file must be provided")
	}

	_, chunks, table, err := resolveFiles(files)
	if err != nil {
		return nil, err
	}

	prog := irgen.GenerateFiles(chunks, table, nil, machine.IsUniverse)
	return compiler.CompileProgram(prog, files[0], chunks[0].Name)
}

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p, err := compileFiles(args)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return dumpProgram(stdio, p, c.Format)
}

func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p, err := compileFiles(args)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	text, err := compiler.Dasm(p)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	stdio.Stdout.Write(text)
	return nil
}
