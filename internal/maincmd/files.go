package maincmd

import (
	"os"

	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/parser"
	"github.com/mbeckem/tiro-sub007/lang/source"
)

// loadChunks reads and parses every named file into a chunk, sharing a
// single FileSet and Arena across all of them (so every node across
// every file gets a distinct AstId, which resolver.Table's AstId-keyed
// maps rely on once more than one file is involved). Parsing continues
// past a bad file so the caller can report every error at once,
// matching ast.Chunk's own partial/has-error contract.
func loadChunks(files []string) (*source.FileSet, []*ast.Chunk, error) {
	fset := source.NewFileSet()
	arena := ast.NewArena()

	var errs source.ErrorList
	chunks := make([]*ast.Chunk, 0, len(files))
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			errs.Add(source.Position{}, err.Error())
			continue
		}
		chunk, perr := parser.ParseChunkIn(fset, arena, name, src)
		chunks = append(chunks, chunk)
		if perr != nil {
			errs = append(errs, perr.(source.ErrorList)...)
		}
	}
	return fset, chunks, errs.Err()
}
