package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/interp"

	"github.com/oryxsh/oryx/internal/alias"
	"github.com/oryxsh/oryx/internal/bash"
	"github.com/oryxsh/oryx/internal/core"
	"github.com/oryxsh/oryx/internal/environment"
	"github.com/oryxsh/oryx/internal/history"
	"github.com/oryxsh/oryx/internal/styles"
)

var version = "dev"

//go:embed .oryxrc.default
var defaultRc string

func main() {
	commandFlag := flag.String("c", "", "run the given command and exit")
	rcfileFlag := flag.String("rcfile", "", "startup script to use instead of ~/.oryxrc")
	norcFlag := flag.Bool("norc", false, "skip startup scripts")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("oryx %s\n", version)
		return
	}

	if err := run(*commandFlag, *rcfileFlag, *norcFlag, flag.Args()); err != nil {
		code := bash.ExitCode(err)
		if _, isStatus := interp.IsExitStatus(err); !isStatus {
			fmt.Fprintln(os.Stderr, styles.Error("oryx: "+err.Error()))
		}
		os.Exit(code)
	}
}

func run(command, rcfile string, norc bool, args []string) error {
	ctx := context.Background()

	paths, err := core.DefaultPaths()
	if err != nil {
		return err
	}

	logger, err := newLogger(paths.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	historyManager, err := history.NewManager(paths.HistoryFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = historyManager.Close()
	}()

	aliasManager, err := alias.NewManager(paths.AliasesFile, logger)
	if err != nil {
		return err
	}

	runner, err := interp.New(
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
		interp.Interactive(true),
		interp.CallHandler(alias.NewCallHandler(aliasManager)),
		interp.ExecHandlers(
			history.NewCommandHandler(historyManager),
			alias.NewCommandHandler(aliasManager),
		),
	)
	if err != nil {
		return err
	}

	if !norc {
		if err := loadStartupScripts(ctx, runner, paths, rcfile, logger); err != nil {
			fmt.Fprintln(os.Stderr, styles.Error("oryx: "+err.Error()))
		}
	}

	switch {
	case command != "":
		return bash.RunCommand(ctx, runner, command)
	case len(args) > 0:
		runner.Params = args[1:]
		return bash.RunScriptFromFile(ctx, runner, args[0])
	case !term.IsTerminal(int(os.Stdin.Fd())):
		return bash.RunScriptFromReader(ctx, runner, os.Stdin, "stdin")
	default:
		logger.Info("starting interactive session", zap.String("version", version))
		return core.RunInteractiveShell(ctx, runner, historyManager, logger)
	}
}

// loadStartupScripts runs the embedded defaults and then the user's rc file,
// if one exists.
func loadStartupScripts(ctx context.Context, runner *interp.Runner, paths core.Paths, rcfile string, logger *zap.Logger) error {
	if err := bash.RunScriptFromReader(ctx, runner, strings.NewReader(defaultRc), "defaults"); err != nil {
		return err
	}
	if rcfile == "" {
		rcfile = core.RcFile(paths.HomeDir)
	}
	if _, err := os.Stat(rcfile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	logger.Debug("loading rc file", zap.String("path", rcfile))
	return bash.RunScriptFromFile(ctx, runner, rcfile)
}

func newLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(environment.GetLogLevel(os.Getenv("ORYX_LOG_LEVEL")))
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
