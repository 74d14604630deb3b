// Package bash runs non-interactive shell input through the interpreter:
// startup scripts, -c strings and script files.
package bash

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RunScriptFromReader parses and executes an entire script. name is used in
// parse error messages.
func RunScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	file, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return runner.Run(ctx, file)
}

// RunScriptFromFile executes the script at path.
func RunScriptFromFile(ctx context.Context, runner *interp.Runner, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return RunScriptFromReader(ctx, runner, f, path)
}

// RunCommand executes a single command string, as given to -c.
func RunCommand(ctx context.Context, runner *interp.Runner, command string) error {
	return RunScriptFromReader(ctx, runner, strings.NewReader(command), "command")
}

// ExitCode translates a runner error into a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if status, ok := interp.IsExitStatus(err); ok {
		return int(status)
	}
	return 1
}
