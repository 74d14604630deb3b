// Package alias implements command aliases with on-disk persistence and
// recursive expansion of the command head word.
package alias

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// maxIndirections bounds how many times the head word may be rewritten while
// expanding, so alias cycles fail instead of looping.
const maxIndirections = 16

var ErrTooManyIndirections = errors.New("too many alias indirections")

type Manager struct {
	path    string
	aliases map[string]string
	logger  *zap.Logger
}

// NewManager loads aliases from the yaml file at path. A missing file is an
// empty alias set.
func NewManager(path string, logger *zap.Logger) (*Manager, error) {
	manager := &Manager{
		path:    path,
		aliases: map[string]string{},
		logger:  logger,
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return manager, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases: %w", err)
	}
	if err := yaml.Unmarshal(data, &manager.aliases); err != nil {
		return nil, fmt.Errorf("failed to parse aliases: %w", err)
	}
	return manager, nil
}

func (m *Manager) Get(name string) (string, bool) {
	value, ok := m.aliases[name]
	return value, ok
}

// Names returns all alias names, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.aliases))
	for name := range m.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) Set(name, value string) error {
	m.aliases[name] = value
	return m.save()
}

func (m *Manager) Unset(name string) error {
	if _, ok := m.aliases[name]; !ok {
		return fmt.Errorf("no such alias: %s", name)
	}
	delete(m.aliases, name)
	return m.save()
}

func (m *Manager) save() error {
	if m.path == "" {
		return nil
	}
	data, err := yaml.Marshal(m.aliases)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

// Expand rewrites the head word of args through the alias table. Expansion
// repeats while the head word keeps resolving to a different alias and fails
// after maxIndirections rewrites, so alias cycles surface as an error. An
// alias whose expansion starts with its own name, like ls="ls -la", expands
// once and stops.
func (m *Manager) Expand(args []string) ([]string, error) {
	if len(args) == 0 {
		return args, nil
	}
	for remaining := maxIndirections; remaining > 0; remaining-- {
		head := args[0]
		value, ok := m.aliases[head]
		if !ok {
			return args, nil
		}
		words := strings.Fields(value)
		if len(words) == 0 {
			return args[1:], nil
		}
		args = append(words, args[1:]...)
		if args[0] == head {
			return args, nil
		}
	}
	return nil, ErrTooManyIndirections
}
