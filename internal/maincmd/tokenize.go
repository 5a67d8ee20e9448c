package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mbeckem/tiro-sub007/lang/scanner"
	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mbeckem/tiro-sub007/lang/token"
	"github.com/mna/mainer"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	fset := source.NewFileSet()
	var errs source.ErrorList
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			errs.Add(source.Position{}, err.Error())
			continue
		}
		file := fset.AddFile(name, len(src))

		var s scanner.Scanner
		s.Init(file, src, errs.Add)
		for {
			var v token.Value
			pos := s.Pos()
			tok := s.Scan(&v)
			fmt.Fprintf(stdio.Stdout, "%s: %s", file.Position(pos), tok)
			if v.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %q", v.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
			if tok == token.EOF {
				break
			}
		}
	}
	if err := errs.Err(); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
