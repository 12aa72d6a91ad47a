// ABOUTME: Tracker owns the profile, meal log, and chat history.
// ABOUTME: It serializes mutations and ties storage, nutrition math, and the remote service together.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/kcal/internal/api"
	"github.com/harperreed/kcal/internal/models"
	"github.com/harperreed/kcal/internal/nutrition"
	"github.com/harperreed/kcal/internal/storage"
)

// ErrNoRemote is returned by operations that need the remote service when none is configured.
var ErrNoRemote = errors.New("remote service not configured")

// Remote is the part of the remote service the tracker calls.
type Remote interface {
	AnalyzeImage(ctx context.Context, image []byte) (*api.Analysis, error)
	CreateMeal(ctx context.Context, meal api.Meal) error
	SendChatMessage(ctx context.Context, text string) (string, error)
}

// Tracker applies user actions to a repository.
type Tracker struct {
	repo   storage.Repository
	remote Remote
	now    func() time.Time
	logger *log.Logger

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRemote sets the remote service used for analysis, meal sync, and chat.
func WithRemote(r Remote) Option {
	return func(t *Tracker) { t.remote = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Tracker over repo.
func New(repo storage.Repository, opts ...Option) *Tracker {
	t := &Tracker{
		repo:   repo,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Repository returns the underlying repository.
func (t *Tracker) Repository() storage.Repository {
	return t.repo
}

// Profile returns the stored profile, or nil if none has been saved.
func (t *Tracker) Profile() (*models.Profile, error) {
	p, err := t.repo.GetProfile()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SaveProfile validates input, recomputes the daily goal, and stores the
// profile. ok=false means the input was rejected and nothing was saved.
func (t *Tracker) SaveProfile(in models.ProfileInput) (*models.Profile, bool, error) {
	p, ok := models.ParseProfileInput(in)
	if !ok {
		return nil, false, nil
	}
	p.DailyCalorieGoal = nutrition.GoalFor(p)
	p.UpdatedAt = t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.repo.SaveProfile(p); err != nil {
		return nil, true, fmt.Errorf("save profile: %w", err)
	}
	t.logger.Debug("profile saved", "goal", p.DailyCalorieGoal)
	return p, true, nil
}

// LogEntry validates input and stores a new entry. A zero Timestamp means
// now. ok=false means the input was rejected and nothing was saved.
func (t *Tracker) LogEntry(in models.EntryInput) (*models.FoodEntry, bool, error) {
	e, ok := models.ParseFoodEntry(in)
	if !ok {
		return nil, false, nil
	}
	now := t.now()
	if in.Timestamp.IsZero() {
		e.Timestamp = now
	}
	e.CreatedAt = now

	if err := t.insert(e); err != nil {
		return nil, true, err
	}
	return e, true, nil
}

// LogAnalysis stores an analyzed meal as an entry. Analyses without food are rejected.
func (t *Tracker) LogAnalysis(a *api.Analysis, at time.Time) (*models.FoodEntry, error) {
	if a == nil || !a.IsFood {
		return nil, errors.New("no food detected")
	}
	name := strings.TrimSpace(a.Name)
	if name == "" || a.Calories < 0 {
		return nil, errors.New("analysis has no usable name or calories")
	}
	if at.IsZero() {
		at = t.now()
	}

	e := models.NewFoodEntry(name, a.Calories).
		WithMacros(a.Protein, a.Fats, a.Carbs).
		WithWeight(a.WeightGrams).
		WithTimestamp(at)
	e.CreatedAt = t.now()
	if a.ImagePath != nil {
		e.WithImageRef(*a.ImagePath)
	}

	if err := t.insert(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (t *Tracker) insert(e *models.FoodEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.repo.CreateEntry(e); err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	t.logger.Debug("entry logged", "id", e.ID.String()[:8], "calories", e.Calories)
	return nil
}

// DeleteEntry removes an entry by ID or prefix.
func (t *Tracker) DeleteEntry(idOrPrefix string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repo.DeleteEntry(idOrPrefix)
}

// Entries returns the latest limit entries, most recent first.
func (t *Tracker) Entries(limit int) ([]*models.FoodEntry, error) {
	return t.repo.ListEntries(limit)
}

func (t *Tracker) goal() (int, error) {
	p, err := t.Profile()
	if err != nil {
		return 0, err
	}
	return nutrition.GoalFor(p), nil
}

func (t *Tracker) entriesOn(day time.Time) ([]*models.FoodEntry, error) {
	start, end := nutrition.DayBounds(day)
	return t.repo.ListEntriesBetween(start, end)
}

// Day summarizes the calendar day containing day, in day's location.
func (t *Tracker) Day(day time.Time) (nutrition.DaySummary, error) {
	goal, err := t.goal()
	if err != nil {
		return nutrition.DaySummary{}, err
	}
	entries, err := t.entriesOn(day)
	if err != nil {
		return nutrition.DaySummary{}, err
	}
	return nutrition.Summarize(entries, day, goal), nil
}

// Today summarizes the current local day.
func (t *Tracker) Today() (nutrition.DaySummary, error) {
	return t.Day(t.now())
}

// Week returns per-day calorie totals for the days ending on end, oldest first.
func (t *Tracker) Week(end time.Time, days int) ([]nutrition.DayTotal, error) {
	days = nutrition.SeriesDays(days)
	first := end.AddDate(0, 0, -(days - 1))
	start, _ := nutrition.DayBounds(first)
	_, stop := nutrition.DayBounds(end)

	entries, err := t.repo.ListEntriesBetween(start, stop)
	if err != nil {
		return nil, err
	}
	return nutrition.Weekly(entries, end, days), nil
}

// AnalyzeImage asks the remote service to recognize the food in image.
// A result with IsFood=false is returned without error.
func (t *Tracker) AnalyzeImage(ctx context.Context, image []byte) (*api.Analysis, error) {
	if t.remote == nil {
		return nil, ErrNoRemote
	}
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}
	return t.remote.AnalyzeImage(ctx, image)
}

// PushEntry sends an existing local entry to the remote meal log.
func (t *Tracker) PushEntry(ctx context.Context, e *models.FoodEntry) error {
	if t.remote == nil {
		return ErrNoRemote
	}
	return t.remote.CreateMeal(ctx, api.Meal{
		Name:        e.Name,
		Calories:    e.Calories,
		Protein:     e.Protein,
		Fats:        e.Fats,
		Carbs:       e.Carbs,
		WeightGrams: e.WeightGrams,
		ImageURL:    e.ImageRef,
	})
}

// ChatContext builds the data block that prefixes chat prompts.
func (t *Tracker) ChatContext() (string, error) {
	p, err := t.Profile()
	if err != nil {
		return "", err
	}
	todays, err := t.entriesOn(t.now())
	if err != nil {
		return "", err
	}
	return nutrition.BuildContext(p, todays), nil
}

// SendChat sends text to the advisor with the user's data attached and
// records both sides of the exchange. Blank text is ignored and returns
// (nil, nil). On failure nothing is recorded.
func (t *Tracker) SendChat(ctx context.Context, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if t.remote == nil {
		return nil, ErrNoRemote
	}

	contextBlock, err := t.ChatContext()
	if err != nil {
		return nil, fmt.Errorf("build chat context: %w", err)
	}
	sentAt := t.now()

	reply, err := t.remote.SendChatMessage(ctx, nutrition.BuildPrompt(contextBlock, text))
	if err != nil {
		return nil, err
	}

	question := models.NewUserMessage(text, sentAt)
	answeredAt := t.now()
	if !answeredAt.After(sentAt) {
		// Replies always sort after their question.
		answeredAt = sentAt.Add(time.Nanosecond)
	}
	answer := models.NewAssistantMessage(reply, answeredAt)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.repo.AppendChatMessage(question); err != nil {
		return nil, fmt.Errorf("append chat message: %w", err)
	}
	if err := t.repo.AppendChatMessage(answer); err != nil {
		return nil, fmt.Errorf("append chat message: %w", err)
	}
	t.logger.Debug("chat exchange recorded", "reply_len", len(reply))
	return answer, nil
}

// ChatHistory returns the latest limit messages, oldest first.
func (t *Tracker) ChatHistory(limit int) ([]*models.ChatMessage, error) {
	return t.repo.ListChatMessages(limit)
}
