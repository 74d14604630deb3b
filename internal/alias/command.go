package alias

import (
	"context"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/interp"
)

// The interpreter resolves `alias` and `unalias` as its own builtins before
// exec handlers run, so the call handler reroutes them to these internal
// names, which fall through to the exec layer.
const (
	aliasCommand   = "oryx-alias"
	unaliasCommand = "oryx-unalias"
)

// NewCallHandler returns the interpreter's call handler. It reroutes the
// alias builtins and expands the head word of every other command. The
// rewrite happens before the interpreter resolves the name, so an alias may
// expand to a shell builtin like cd.
func NewCallHandler(manager *Manager) interp.CallHandlerFunc {
	return func(ctx context.Context, args []string) ([]string, error) {
		if len(args) == 0 {
			return args, nil
		}
		switch args[0] {
		case "alias":
			return append([]string{aliasCommand}, args[1:]...), nil
		case "unalias":
			return append([]string{unaliasCommand}, args[1:]...), nil
		}
		expanded, err := manager.Expand(args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", args[0], err)
		}
		if len(expanded) == 0 {
			return []string{"true"}, nil
		}
		return expanded, nil
	}
}

// NewCommandHandler returns exec middleware implementing the rerouted
// `alias` and `unalias` builtins.
func NewCommandHandler(manager *Manager) func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return next(ctx, args)
			}
			hc := interp.HandlerCtx(ctx)
			switch args[0] {
			case aliasCommand:
				return runAlias(hc, manager, args[1:])
			case unaliasCommand:
				return runUnalias(hc, manager, args[1:])
			default:
				return next(ctx, args)
			}
		}
	}
}

func runAlias(hc interp.HandlerContext, manager *Manager, args []string) error {
	if len(args) == 0 {
		for _, name := range manager.Names() {
			value, _ := manager.Get(name)
			fmt.Fprintf(hc.Stdout, "alias %s='%s'\n", name, value)
		}
		return nil
	}
	status := 0
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if found {
			if err := manager.Set(name, value); err != nil {
				fmt.Fprintf(hc.Stderr, "alias: %v\n", err)
				status = 1
			}
			continue
		}
		if value, ok := manager.Get(arg); ok {
			fmt.Fprintf(hc.Stdout, "alias %s='%s'\n", arg, value)
		} else {
			fmt.Fprintf(hc.Stderr, "alias: %s: not found\n", arg)
			status = 1
		}
	}
	if status != 0 {
		return interp.NewExitStatus(uint8(status))
	}
	return nil
}

func runUnalias(hc interp.HandlerContext, manager *Manager, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(hc.Stderr, "usage: unalias <name>...")
		return interp.NewExitStatus(1)
	}
	status := 0
	for _, name := range args {
		if err := manager.Unset(name); err != nil {
			fmt.Fprintf(hc.Stderr, "unalias: %v\n", err)
			status = 1
		}
	}
	if status != 0 {
		return interp.NewExitStatus(uint8(status))
	}
	return nil
}
