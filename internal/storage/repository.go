// ABOUTME: Repository interface for calorie tracker storage.
// ABOUTME: Defines the contract for profile, food entry, and chat CRUD operations.
package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/harperreed/kcal/internal/models"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for tracker data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Profile operations. GetProfile returns ErrNotFound before the first save.
	GetProfile() (*models.Profile, error)
	SaveProfile(p *models.Profile) error

	// Food entry operations
	CreateEntry(e *models.FoodEntry) error
	GetEntry(idOrPrefix string) (*models.FoodEntry, error)
	ListEntries(limit int) ([]*models.FoodEntry, error)
	ListEntriesBetween(start, end time.Time) ([]*models.FoodEntry, error)
	DeleteEntry(idOrPrefix string) error

	// Chat operations
	AppendChatMessage(m *models.ChatMessage) error
	ListChatMessages(limit int) ([]*models.ChatMessage, error)

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}

// isFullUUID reports whether s has the shape of a canonical UUID string.
func isFullUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}
