package maincmd

import (
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/compiler"
	"github.com/mna/mainer"
	"gopkg.in/yaml.v3"
)

// funcDump is a cycle-free, yaml-friendly projection of a compiler.Funcode:
// Funcode.Prog points back at the owning Program, which gopkg.in/yaml.v3
// cannot walk (it doesn't detect reference cycles), so --format=yaml never
// marshals a Funcode/Program directly.
type funcDump struct {
	Name      string `yaml:"name"`
	NumParams int    `yaml:"numParams"`
	HasVarArg bool   `yaml:"hasVarArg"`
	MaxStack  int    `yaml:"maxStack"`
	Locals    int    `yaml:"locals"`
	Cells     int    `yaml:"cells"`
	Freevars  int    `yaml:"freevars"`
	CodeSize  int    `yaml:"codeSize"`
}

type programDump struct {
	Filename  string     `yaml:"filename"`
	Toplevel  string     `yaml:"toplevel"`
	Functions []funcDump `yaml:"functions"`
	Names     []string   `yaml:"names"`
}

func newFuncDump(fc *compiler.Funcode) funcDump {
	return funcDump{
		Name:      fc.Name,
		NumParams: fc.NumParams,
		HasVarArg: fc.HasVarArg,
		MaxStack:  fc.MaxStack,
		Locals:    len(fc.Locals),
		Cells:     len(fc.Cells),
		Freevars:  len(fc.Freevars),
		CodeSize:  len(fc.Code),
	}
}

// dumpProgram writes p to stdio.Stdout either as pseudo-assembly (the
// default, via compiler.Dasm) or, with format == "yaml", as a structural
// manifest of its functions.
func dumpProgram(stdio mainer.Stdio, p *compiler.Program, format string) error {
	if format != "yaml" {
		text, err := compiler.Dasm(p)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		stdio.Stdout.Write(text)
		return nil
	}

	dump := programDump{
		Filename: p.Filename,
		Toplevel: p.Toplevel.Name,
		Names:    p.Names,
	}
	for _, fc := range p.Functions {
		dump.Functions = append(dump.Functions, newFuncDump(fc))
	}
	out, err := yaml.Marshal(dump)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	stdio.Stdout.Write(out)
	return nil
}
