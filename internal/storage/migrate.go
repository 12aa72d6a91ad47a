// ABOUTME: Data migration between kcal storage backends.
// ABOUTME: Copies the profile, food entries, and chat history from source to destination.

package storage

import (
	"errors"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Profile      bool
	Entries      int
	ChatMessages int
}

// MigrateData copies all data from src to dst storage.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	profile, err := src.GetProfile()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get source profile: %w", err)
	}
	entries, err := src.ListEntries(0)
	if err != nil {
		return nil, fmt.Errorf("list source entries: %w", err)
	}
	messages, err := src.ListChatMessages(0)
	if err != nil {
		return nil, fmt.Errorf("list source chat messages: %w", err)
	}
	if err := validateImport(&ExportData{Profile: profile, Entries: entries, ChatMessages: messages}); err != nil {
		return nil, err
	}

	summary := &MigrateSummary{}
	if profile != nil {
		if err := dst.SaveProfile(profile); err != nil {
			return nil, fmt.Errorf("save profile: %w", err)
		}
		summary.Profile = true
	}

	// Oldest first so append-ordered backends keep chronology.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := dst.CreateEntry(e); err != nil {
			return nil, fmt.Errorf("create entry %s: %w", e.ID, err)
		}
		summary.Entries++
	}

	for _, m := range messages {
		if err := dst.AppendChatMessage(m); err != nil {
			return nil, fmt.Errorf("append chat message %s: %w", m.ID, err)
		}
		summary.ChatMessages++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
