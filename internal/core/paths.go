package core

import (
	"os"
	"path/filepath"
)

// Paths is where oryx keeps its state on disk.
type Paths struct {
	HomeDir     string
	DataDir     string
	LogFile     string
	HistoryFile string
	AliasesFile string
}

// DefaultPaths resolves the standard file locations under the user's home
// directory and makes sure the data directory exists.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	dataDir := filepath.Join(home, ".local", "share", "oryx")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return Paths{}, err
	}
	return Paths{
		HomeDir:     home,
		DataDir:     dataDir,
		LogFile:     filepath.Join(dataDir, "oryx.log"),
		HistoryFile: filepath.Join(dataDir, "history.db"),
		AliasesFile: filepath.Join(dataDir, "aliases.yaml"),
	}, nil
}

// RcFile is the user's startup script, which may not exist.
func RcFile(home string) string {
	return filepath.Join(home, ".oryxrc")
}
