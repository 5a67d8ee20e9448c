package maincmd

import (
	"context"
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mna/mainer"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, args...)
}

func ParseFiles(stdio mainer.Stdio, files ...string) error {
	_, chunks, err := loadChunks(files)
	for _, ch := range chunks {
		ast.Print(stdio.Stdout, ch)
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	return err
}
