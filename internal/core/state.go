package core

import (
	"strconv"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// ShellState tracks facts about the previous command that later commands or
// prompt hooks may want.
type ShellState struct {
	LastCommand  string
	LastExitCode int
}

// Publish mirrors the state into shell variables, so rc scripts and
// ORYX_UPDATE_PROMPT can read $ORYX_LAST_STATUS and $ORYX_LAST_COMMAND.
func (s *ShellState) Publish(runner *interp.Runner) {
	if runner.Vars == nil {
		return
	}
	runner.Vars["ORYX_LAST_STATUS"] = expand.Variable{
		Kind: expand.String,
		Str:  strconv.Itoa(s.LastExitCode),
	}
	runner.Vars["ORYX_LAST_COMMAND"] = expand.Variable{
		Kind: expand.String,
		Str:  s.LastCommand,
	}
}
