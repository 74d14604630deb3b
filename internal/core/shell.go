package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/oryxsh/oryx/internal/environment"
	"github.com/oryxsh/oryx/internal/history"
	"github.com/oryxsh/oryx/internal/styles"
	"github.com/oryxsh/oryx/pkg/lineedit"
)

// RunInteractiveShell reads commands from the terminal and executes them
// until the user exits. The terminal is in raw mode only while a line is
// being edited, so child processes always see a cooked terminal.
func RunInteractiveShell(ctx context.Context, runner *interp.Runner, historyManager *history.Manager, logger *zap.Logger) error {
	tty := lineedit.NewTerm()
	reader := lineedit.NewReadLine(tty, lineedit.NewFileProvider(), WordAtCursor, logger)
	state := &ShellState{}

	restoreOnSignal(tty, logger)
	defer ignoreInterrupts()()

	historyLimit := environment.GetHistoryLimit(runner, logger)

	for {
		entries, err := historyManager.GetRecentEntries(historyLimit)
		if err != nil {
			logger.Error("failed to load history", zap.Error(err))
		}
		reader.LoadHistory(lo.Map(entries, func(e history.Entry, _ int) string {
			return e.Command
		}))

		prompt := environment.GetPrompt(ctx, runner, logger)
		if err := tty.WriteAll([]byte("\r" + prompt)); err != nil {
			return err
		}

		exec, err := readOneLine(tty, reader)
		if err != nil {
			logger.Error("line editor failed", zap.Error(err))
			return err
		}

		switch exec.Kind {
		case lineedit.ExecuteExit:
			return nil
		case lineedit.ExecuteCancel:
			continue
		}

		line := strings.TrimSpace(exec.Line)
		if line == "" {
			continue
		}

		exited, err := executeCommand(ctx, line, runner, historyManager, state, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, styles.Error(err.Error()))
		}
		if exited {
			return nil
		}
	}
}

// readOneLine runs one line-editing session with the terminal in raw mode.
func readOneLine(tty *lineedit.Term, reader *lineedit.ReadLine) (lineedit.Execute, error) {
	if err := tty.MakeRaw(); err != nil {
		return lineedit.Execute{}, err
	}
	defer func() {
		_ = tty.Restore()
	}()
	return reader.Read()
}

// executeCommand parses and runs one submitted line, recording it in history
// with the exit code it produced. The second return is true when the command
// asked the shell to exit.
func executeCommand(ctx context.Context, line string, runner *interp.Runner, historyManager *history.Manager, state *ShellState, logger *zap.Logger) (bool, error) {
	entry, err := historyManager.StartCommand(line, environment.GetPwd(runner))
	if err != nil {
		logger.Error("failed to record command", zap.Error(err))
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		finishEntry(historyManager, entry, 127, logger)
		return false, err
	}

	var runErr error
	exitCode := 0
	for _, stmt := range prog.Stmts {
		runErr = runner.Run(ctx, stmt)
		if status, ok := interp.IsExitStatus(runErr); ok {
			exitCode = int(status)
			runErr = nil
		} else if runErr != nil {
			exitCode = 1
		}
		if runner.Exited() {
			break
		}
	}

	finishEntry(historyManager, entry, exitCode, logger)
	state.LastCommand = line
	state.LastExitCode = exitCode
	state.Publish(runner)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runner.Exited(), runErr
	}
	return runner.Exited(), nil
}

func finishEntry(historyManager *history.Manager, entry *history.Entry, exitCode int, logger *zap.Logger) {
	if entry == nil {
		return
	}
	if err := historyManager.FinishCommand(entry, exitCode); err != nil {
		logger.Error("failed to finalize history entry", zap.Error(err))
	}
}

// ignoreInterrupts drops the shell's own SIGINT disposition for the length
// of the session. Ctrl-C reaches the line editor as a byte while editing,
// and reaches the foreground child directly while a command runs; the shell
// process itself must survive both. The returned func restores the default.
func ignoreInterrupts() func() {
	signal.Ignore(os.Interrupt)
	return func() {
		signal.Reset(os.Interrupt)
	}
}

// restoreOnSignal puts the terminal back into cooked mode if the process is
// told to terminate while a line is being edited.
func restoreOnSignal(tty *lineedit.Term, logger *zap.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-sigs
		logger.Info("terminating on signal", zap.String("signal", sig.String()))
		_ = tty.Restore()
		os.Exit(1)
	}()
}
