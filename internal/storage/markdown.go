// ABOUTME: MarkdownStore provides file-based storage for tracker data.
// ABOUTME: Each entry and chat message is a markdown file with YAML frontmatter.

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/kcal/internal/models"
	"gopkg.in/yaml.v3"
)

// MarkdownStore provides file-based storage for tracker data using markdown files.
type MarkdownStore struct {
	dataDir string
}

// Compile-time check that MarkdownStore implements Repository.
var _ Repository = (*MarkdownStore)(nil)

// NewMarkdownStore creates a new markdown-backed store rooted at dataDir.
func NewMarkdownStore(dataDir string) (*MarkdownStore, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &MarkdownStore{dataDir: dataDir}, nil
}

// Close releases resources. For MarkdownStore this is a no-op.
func (s *MarkdownStore) Close() error {
	return nil
}

func (s *MarkdownStore) profilePath() string {
	return filepath.Join(s.dataDir, "profile.md")
}

func (s *MarkdownStore) entriesDir() string {
	return filepath.Join(s.dataDir, "entries")
}

func (s *MarkdownStore) chatDir() string {
	return filepath.Join(s.dataDir, "chat")
}

// entryFilePath returns the path for an entry file based on date and name.
// Format: entries/YYYY/MM/YYYY-MM-DD-<slug>-<id_prefix>.md.
func (s *MarkdownStore) entryFilePath(e *models.FoodEntry) string {
	at := e.Timestamp.Local()
	return filepath.Join(s.entriesDir(), at.Format("2006"), at.Format("01"),
		fmt.Sprintf("%s-%s-%s.md", at.Format("2006-01-02"), slugify(e.Name), e.ID.String()[:8]))
}

// chatFilePath returns the path for a chat message file.
// Format: chat/YYYY/MM/YYYY-MM-DD-<id_prefix>.md.
func (s *MarkdownStore) chatFilePath(m *models.ChatMessage) string {
	at := m.Timestamp.Local()
	return filepath.Join(s.chatDir(), at.Format("2006"), at.Format("01"),
		fmt.Sprintf("%s-%s.md", at.Format("2006-01-02"), m.ID.String()[:8]))
}

type profileFrontmatter struct {
	Weight           float64 `yaml:"weight"`
	Height           float64 `yaml:"height"`
	Gender           string  `yaml:"gender,omitempty"`
	ActivityLevel    string  `yaml:"activity_level"`
	DailyCalorieGoal int     `yaml:"daily_calorie_goal"`
	UpdatedAt        string  `yaml:"updated_at"`
}

type entryFrontmatter struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Calories    int     `yaml:"calories"`
	Protein     float64 `yaml:"protein"`
	Fats        float64 `yaml:"fats"`
	Carbs       float64 `yaml:"carbs"`
	WeightGrams float64 `yaml:"weight_grams"`
	EatenAt     string  `yaml:"eaten_at"`
	ImageRef    string  `yaml:"image_ref,omitempty"`
	CreatedAt   string  `yaml:"created_at"`
}

type chatFrontmatter struct {
	ID     string `yaml:"id"`
	IsUser bool   `yaml:"is_user"`
	SentAt string `yaml:"sent_at"`
}

// GetProfile reads profile.md, or returns ErrNotFound.
func (s *MarkdownStore) GetProfile() (*models.Profile, error) {
	data, err := os.ReadFile(s.profilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	yamlStr, _ := splitFrontmatter(string(data))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter in %s", s.profilePath())
	}
	var fm profileFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("parse profile frontmatter: %w", err)
	}

	return &models.Profile{
		Weight:           fm.Weight,
		Height:           fm.Height,
		Gender:           models.ParseGender(fm.Gender),
		ActivityLevel:    models.ParseActivityLevel(fm.ActivityLevel),
		DailyCalorieGoal: fm.DailyCalorieGoal,
		UpdatedAt:        parseTime(fm.UpdatedAt),
	}, nil
}

// SaveProfile writes profile.md, replacing any previous profile.
func (s *MarkdownStore) SaveProfile(p *models.Profile) error {
	fm := profileFrontmatter{
		Weight:           p.Weight,
		Height:           p.Height,
		Gender:           string(p.Gender),
		ActivityLevel:    string(p.ActivityLevel),
		DailyCalorieGoal: p.DailyCalorieGoal,
		UpdatedAt:        formatTime(p.UpdatedAt),
	}
	body := fmt.Sprintf("\n# Profile\n\nDaily goal: %d kcal\n", p.DailyCalorieGoal)
	content, err := renderFrontmatter(&fm, body)
	if err != nil {
		return fmt.Errorf("render profile: %w", err)
	}
	return atomicWrite(s.profilePath(), []byte(content))
}

// CreateEntry writes a new entry file. Duplicate IDs are rejected.
func (s *MarkdownStore) CreateEntry(e *models.FoodEntry) error {
	if _, _, err := s.findEntryFile(e.ID.String()); err == nil {
		return fmt.Errorf("create entry: duplicate id %s", e.ID)
	}

	fm := entryFrontmatter{
		ID:          e.ID.String(),
		Name:        e.Name,
		Calories:    e.Calories,
		Protein:     e.Protein,
		Fats:        e.Fats,
		Carbs:       e.Carbs,
		WeightGrams: e.WeightGrams,
		EatenAt:     formatTime(e.Timestamp),
		CreatedAt:   formatTime(e.CreatedAt),
	}
	if e.ImageRef != nil {
		fm.ImageRef = *e.ImageRef
	}

	body := fmt.Sprintf("\n# %s\n\n%d kcal\n", e.Name, e.Calories)
	content, err := renderFrontmatter(&fm, body)
	if err != nil {
		return fmt.Errorf("render entry file: %w", err)
	}
	return atomicWrite(s.entryFilePath(e), []byte(content))
}

// GetEntry retrieves an entry by ID or ID prefix.
func (s *MarkdownStore) GetEntry(idOrPrefix string) (*models.FoodEntry, error) {
	_, e, err := s.findEntryFile(idOrPrefix)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntries returns entries most recent first.
func (s *MarkdownStore) ListEntries(limit int) ([]*models.FoodEntry, error) {
	var entries []*models.FoodEntry
	err := s.walkEntryFiles(func(_ string, e *models.FoodEntry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	sortEntriesDesc(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ListEntriesBetween returns entries with start <= timestamp < end, most recent first.
func (s *MarkdownStore) ListEntriesBetween(start, end time.Time) ([]*models.FoodEntry, error) {
	var entries []*models.FoodEntry
	err := s.walkEntryFiles(func(_ string, e *models.FoodEntry) error {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list entries between: %w", err)
	}
	sortEntriesDesc(entries)
	return entries, nil
}

// DeleteEntry removes an entry file by ID or prefix.
func (s *MarkdownStore) DeleteEntry(idOrPrefix string) error {
	path, _, err := s.findEntryFile(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// AppendChatMessage writes a chat message file.
func (s *MarkdownStore) AppendChatMessage(m *models.ChatMessage) error {
	fm := chatFrontmatter{
		ID:     m.ID.String(),
		IsUser: m.IsUser,
		SentAt: formatTime(m.Timestamp),
	}
	content, err := renderFrontmatter(&fm, "\n"+m.Text+"\n")
	if err != nil {
		return fmt.Errorf("render chat message: %w", err)
	}
	return atomicWrite(s.chatFilePath(m), []byte(content))
}

// ListChatMessages returns the latest limit messages, oldest first.
func (s *MarkdownStore) ListChatMessages(limit int) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := walkMarkdown(s.chatDir(), func(path string) error {
		m, err := readChatFile(path)
		if err != nil {
			return fmt.Errorf("read chat file %s: %w", path, err)
		}
		messages = append(messages, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// GetAllData retrieves all data for export.
func (s *MarkdownStore) GetAllData() (*ExportData, error) {
	return collectAllData(s)
}

// ImportData imports data from an export. Duplicate IDs cause an error.
func (s *MarkdownStore) ImportData(data *ExportData) error {
	return importAllData(s, data)
}

func readEntryFile(path string) (*models.FoodEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	yamlStr, _ := splitFrontmatter(string(data))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter in %s", path)
	}

	var fm entryFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}

	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse entry ID %q: %w", fm.ID, err)
	}

	e := &models.FoodEntry{
		ID:          id,
		Name:        fm.Name,
		Calories:    fm.Calories,
		Protein:     fm.Protein,
		Fats:        fm.Fats,
		Carbs:       fm.Carbs,
		WeightGrams: fm.WeightGrams,
		Timestamp:   parseTime(fm.EatenAt),
		CreatedAt:   parseTime(fm.CreatedAt),
	}
	if fm.ImageRef != "" {
		e.WithImageRef(fm.ImageRef)
	}
	return e, nil
}

func readChatFile(path string) (*models.ChatMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	yamlStr, body := splitFrontmatter(string(data))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter in %s", path)
	}

	var fm chatFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse chat message ID %q: %w", fm.ID, err)
	}

	return &models.ChatMessage{
		ID:        id,
		Text:      strings.TrimSpace(body),
		IsUser:    fm.IsUser,
		Timestamp: parseTime(fm.SentAt),
	}, nil
}

// walkEntryFiles walks all entry markdown files and calls fn for each.
func (s *MarkdownStore) walkEntryFiles(fn func(path string, e *models.FoodEntry) error) error {
	return walkMarkdown(s.entriesDir(), func(path string) error {
		e, err := readEntryFile(path)
		if err != nil {
			return fmt.Errorf("read entry file %s: %w", path, err)
		}
		return fn(path, e)
	})
}

// walkMarkdown calls fn for every .md file under dir. A missing dir is empty.
func walkMarkdown(dir string, fn func(path string) error) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		return fn(path)
	})
}

// findEntryFile finds the file path for an entry by ID or prefix.
func (s *MarkdownStore) findEntryFile(idOrPrefix string) (string, *models.FoodEntry, error) {
	if idOrPrefix == "" {
		return "", nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	full := isFullUUID(idOrPrefix)

	var foundPath string
	var found *models.FoodEntry
	matchCount := 0

	err := s.walkEntryFiles(func(path string, e *models.FoodEntry) error {
		idStr := e.ID.String()
		if full {
			if idStr == idOrPrefix {
				foundPath, found, matchCount = path, e, 1
				return filepath.SkipAll
			}
		} else if strings.HasPrefix(idStr, idOrPrefix) {
			foundPath, found = path, e
			matchCount++
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	if matchCount == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if matchCount > 1 {
		return "", nil, fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
	return foundPath, found, nil
}

func sortEntriesDesc(entries []*models.FoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
