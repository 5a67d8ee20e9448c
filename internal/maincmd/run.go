package maincmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mbeckem/tiro-sub007/lang/machine"
	"github.com/mna/mainer"
)

// VMConfig tunes the machine.Thread that Run/Invoke executes a compiled
// Program on. Every field maps onto the matching Thread safety limit, read
// from the environment so a deployment can cap a thread's resource usage
// without a recompile (e.g. TIRO_VM_MAX_STEPS=100000 for a sandboxed
// evaluation service). Zero/default means "no limit", same as Thread.
type VMConfig struct {
	MaxSteps          int  `env:"MAX_STEPS" envDefault:"0"`
	MaxCallStackDepth int  `env:"MAX_CALL_STACK_DEPTH" envDefault:"0"`
	MaxCompareDepth   int  `env:"MAX_COMPARE_DEPTH" envDefault:"0"`
	DisableRecursion  bool `env:"DISABLE_RECURSION" envDefault:"false"`
}

// LoadVMConfig reads a VMConfig from TIRO_VM_-prefixed environment
// variables (TIRO_VM_MAX_STEPS, TIRO_VM_MAX_CALL_STACK_DEPTH, ...).
func LoadVMConfig() (VMConfig, error) {
	var cfg VMConfig
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TIRO_VM_"})
	return cfg, err
}

func (cfg VMConfig) apply(th *machine.Thread) {
	th.MaxSteps = cfg.MaxSteps
	th.MaxCallStackDepth = cfg.MaxCallStackDepth
	th.MaxCompareDepth = cfg.MaxCompareDepth
	th.DisableRecursion = cfg.DisableRecursion
}

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	p, err := compileFiles(args)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	cfg, err := LoadVMConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	th := &machine.Thread{
		Name:   "main",
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
		Stdin:  stdio.Stdin,
	}
	cfg.apply(th)

	var result machine.Value
	if c.Invoke != "" {
		callArgs, aerr := parseInvokeArgs(c.InvokeArgs)
		if aerr != nil {
			fmt.Fprintln(stdio.Stderr, aerr)
			return aerr
		}
		result, err = th.Invoke(ctx, p, c.Invoke, machine.NewTuple(callArgs))
	} else {
		result, err = th.RunProgram(ctx, p)
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	fmt.Fprintln(stdio.Stdout, result.String())
	return nil
}

// parseInvokeArgs parses a comma-separated list of int, float or string literals
// passed via --invoke-args into VM values, e.g. "7,\"hi\"". It is a small
// convenience for driving `run --invoke` from a shell, not a general
// expression evaluator.
func parseInvokeArgs(raw string) ([]machine.Value, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]machine.Value, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, `"`) && strings.HasSuffix(part, `"`) && len(part) >= 2 {
			out = append(out, machine.String(part[1:len(part)-1]))
			continue
		}
		if i, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, machine.Int(i))
			continue
		}
		if f, err := strconv.ParseFloat(part, 64); err == nil {
			out = append(out, machine.Float(f))
			continue
		}
		return nil, fmt.Errorf("invoke argument %q is not an int, float or quoted string literal", part)
	}
	return out, nil
}
