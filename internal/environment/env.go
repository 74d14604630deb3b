// Package environment reads oryx configuration out of the interpreter's
// shell variables, so users configure the shell from their rc file.
package environment

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"mvdan.cc/sh/v3/interp"

	"github.com/oryxsh/oryx/internal/styles"
)

const (
	defaultPrompt       = "oryx> "
	defaultHistoryLimit = 1024
)

// GetPwd returns the interpreter's working directory, falling back to the
// PWD variable.
func GetPwd(runner *interp.Runner) string {
	if pwd := runner.Vars["PWD"].String(); pwd != "" {
		return pwd
	}
	return runner.Dir
}

// GetPrompt builds the prompt string. If the rc file defined an
// ORYX_UPDATE_PROMPT function it runs first, then ORYX_PROMPT is read. With
// neither set the default prompt is used.
func GetPrompt(ctx context.Context, runner *interp.Runner, logger *zap.Logger) string {
	if updater, ok := runner.Funcs["ORYX_UPDATE_PROMPT"]; ok {
		if err := runner.Run(ctx, updater); err != nil {
			logger.Warn("ORYX_UPDATE_PROMPT failed", zap.Error(err))
		}
	}
	if prompt := runner.Vars["ORYX_PROMPT"].String(); prompt != "" {
		return prompt
	}
	return styles.Prompt(defaultPrompt)
}

// GetHistoryLimit returns how many history entries to load into the line
// editor, from ORYX_HISTORY_LIMIT.
func GetHistoryLimit(runner *interp.Runner, logger *zap.Logger) int {
	raw := runner.Vars["ORYX_HISTORY_LIMIT"].String()
	if raw == "" {
		return defaultHistoryLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		logger.Warn("invalid ORYX_HISTORY_LIMIT", zap.String("value", raw))
		return defaultHistoryLimit
	}
	return limit
}

// GetLogLevel parses ORYX_LOG_LEVEL, defaulting to warnings.
func GetLogLevel(raw string) zapcore.Level {
	if raw == "" {
		return zapcore.WarnLevel
	}
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.WarnLevel
	}
	return level
}
