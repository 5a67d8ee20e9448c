package maincmd

import (
	"context"
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/machine"
	"github.com/mbeckem/tiro-sub007/lang/resolver"
	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mna/mainer"
)

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(stdio, args...)
}

// ResolveFiles parses and resolves files, printing the AST of every parsed
// chunk (also when errors were reported) followed by any diagnostics.
// isPredeclared is always nil here (the CLI has no way to register
// predeclared names of its own); isUniversal is machine.IsUniverse, the
// same universe the VM itself runs against.
func ResolveFiles(stdio mainer.Stdio, files ...string) error {
	_, chunks, _, err := resolveFiles(files)
	for _, ch := range chunks {
		ast.Print(stdio.Stdout, ch)
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	return err
}

// resolveFiles is the shared parse+resolve step compile.go and run.go
// build on: it returns the FileSet/chunks/table a later irgen.GenerateFiles
// call needs, in addition to any accumulated diagnostics.
func resolveFiles(files []string) (*source.FileSet, []*ast.Chunk, *resolver.Table, error) {
	fset, chunks, perr := loadChunks(files)
	if perr != nil {
		return fset, chunks, nil, perr
	}
	table, rerr := resolver.ResolveFiles(fset, chunks, nil, machine.IsUniverse)
	return fset, chunks, table, rerr
}
