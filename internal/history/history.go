// Package history persists executed commands to a local sqlite database and
// serves them back for recall and searching.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one executed command. ExitCode is null until the command finishes.
type Entry struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Command   string
	Directory string
	ExitCode  sql.NullInt32
}

type Manager struct {
	db *gorm.DB
}

// NewManager opens (creating if needed) the history database at path. Use
// ":memory:" for an ephemeral database.
func NewManager(path string) (*Manager, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	db, err := m.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// StartCommand records a command that is about to run.
func (m *Manager) StartCommand(command, directory string) (*Entry, error) {
	entry := &Entry{Command: command, Directory: directory}
	if err := m.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// FinishCommand stores the exit code of a previously started command.
func (m *Manager) FinishCommand(entry *Entry, exitCode int) error {
	entry.ExitCode = sql.NullInt32{Int32: int32(exitCode), Valid: true}
	return m.db.Save(entry).Error
}

// GetRecentEntries returns up to limit entries, oldest first.
func (m *Manager) GetRecentEntries(limit int) ([]Entry, error) {
	var entries []Entry
	err := m.db.Order("id desc").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return lo.Reverse(entries), nil
}

// GetAllEntries returns every entry, oldest first.
func (m *Manager) GetAllEntries() ([]Entry, error) {
	var entries []Entry
	err := m.db.Order("id asc").Find(&entries).Error
	return entries, err
}

// DeleteEntry removes one entry by id.
func (m *Manager) DeleteEntry(id uint) error {
	return m.db.Delete(&Entry{}, id).Error
}

// ResetHistory deletes every entry.
func (m *Manager) ResetHistory() error {
	return m.db.Where("1 = 1").Delete(&Entry{}).Error
}
