// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Runs the same CRUD checks against SQLite and markdown storage.
package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/kcal/internal/models"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kcal-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "kcal.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// forEachBackend runs fn once per storage backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("markdown", func(t *testing.T) { fn(t, setupTestMarkdownStore(t)) })
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 5, 10, hour, minute, 0, 0, time.Local)
}

func TestProfileRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		if _, err := repo.GetProfile(); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetProfile on empty store: got %v, want ErrNotFound", err)
		}

		p := &models.Profile{
			Weight:           70,
			Height:           175,
			Gender:           models.GenderMale,
			ActivityLevel:    models.ActivityActive,
			DailyCalorieGoal: 2788,
			UpdatedAt:        at(8, 0),
		}
		if err := repo.SaveProfile(p); err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}

		// Saving again replaces rather than appends.
		p.Weight = 72
		if err := repo.SaveProfile(p); err != nil {
			t.Fatalf("SaveProfile (update) failed: %v", err)
		}

		got, err := repo.GetProfile()
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if got.Weight != 72 || got.Height != 175 {
			t.Errorf("weight/height = %v/%v, want 72/175", got.Weight, got.Height)
		}
		if got.Gender != models.GenderMale {
			t.Errorf("Gender = %q, want male", got.Gender)
		}
		if got.ActivityLevel != models.ActivityActive {
			t.Errorf("ActivityLevel = %q, want active", got.ActivityLevel)
		}
		if got.DailyCalorieGoal != 2788 {
			t.Errorf("DailyCalorieGoal = %d, want 2788", got.DailyCalorieGoal)
		}
		if !got.UpdatedAt.Equal(p.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, p.UpdatedAt)
		}
	})
}

func TestProfileUnsetGender(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		p := &models.Profile{Weight: 70, Height: 175, ActivityLevel: models.ActivitySedentary, DailyCalorieGoal: 2153}
		if err := repo.SaveProfile(p); err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}
		got, err := repo.GetProfile()
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if got.Gender != models.GenderUnset {
			t.Errorf("Gender = %q, want unset", got.Gender)
		}
	})
}

func TestCreateAndGetEntry(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		e := models.NewFoodEntry("Oatmeal", 300).
			WithMacros(10.5, 5, 50).
			WithWeight(250).
			WithTimestamp(at(8, 30)).
			WithImageRef("uploads/oatmeal.jpg")

		if err := repo.CreateEntry(e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}

		got, err := repo.GetEntry(e.ID.String())
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.ID != e.ID {
			t.Errorf("ID mismatch: got %v, want %v", got.ID, e.ID)
		}
		if got.Name != "Oatmeal" || got.Calories != 300 {
			t.Errorf("got %q %d, want Oatmeal 300", got.Name, got.Calories)
		}
		if got.Protein != 10.5 || got.Fats != 5 || got.Carbs != 50 {
			t.Errorf("macros = %v/%v/%v, want 10.5/5/50", got.Protein, got.Fats, got.Carbs)
		}
		if got.WeightGrams != 250 {
			t.Errorf("WeightGrams = %v, want 250", got.WeightGrams)
		}
		if !got.Timestamp.Equal(e.Timestamp) {
			t.Errorf("Timestamp = %v, want %v", got.Timestamp, e.Timestamp)
		}
		if got.ImageRef == nil || *got.ImageRef != "uploads/oatmeal.jpg" {
			t.Errorf("ImageRef = %v, want uploads/oatmeal.jpg", got.ImageRef)
		}
	})
}

func TestGetEntryByPrefix(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		e := models.NewFoodEntry("Apple", 52)
		if err := repo.CreateEntry(e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}

		got, err := repo.GetEntry(e.ID.String()[:8])
		if err != nil {
			t.Fatalf("GetEntry by prefix failed: %v", err)
		}
		if got.ID != e.ID {
			t.Errorf("ID mismatch: got %v, want %v", got.ID, e.ID)
		}
	})
}

func TestGetEntryNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		_, err := repo.GetEntry(uuid.New().String())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetEntry: got %v, want ErrNotFound", err)
		}
		_, err = repo.GetEntry("deadbeef")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetEntry by prefix: got %v, want ErrNotFound", err)
		}
	})
}

func TestAmbiguousPrefixError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		a := models.NewFoodEntry("A", 1)
		a.ID = uuid.MustParse("abcd0000-0000-0000-0000-000000000001")
		b := models.NewFoodEntry("B", 2)
		b.ID = uuid.MustParse("abcd0000-0000-0000-0000-000000000002")
		for _, e := range []*models.FoodEntry{a, b} {
			if err := repo.CreateEntry(e); err != nil {
				t.Fatalf("CreateEntry failed: %v", err)
			}
		}

		_, err := repo.GetEntry("abcd")
		if err == nil || !strings.Contains(err.Error(), "ambiguous") {
			t.Errorf("expected ambiguous prefix error, got %v", err)
		}
	})
}

func TestListEntries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		names := []string{"Breakfast", "Lunch", "Dinner"}
		for i, name := range names {
			e := models.NewFoodEntry(name, 100*(i+1)).WithTimestamp(at(8+4*i, 0))
			if err := repo.CreateEntry(e); err != nil {
				t.Fatalf("CreateEntry failed: %v", err)
			}
		}

		all, err := repo.ListEntries(0)
		if err != nil {
			t.Fatalf("ListEntries failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("len = %d, want 3", len(all))
		}
		// Most recent first.
		if all[0].Name != "Dinner" || all[2].Name != "Breakfast" {
			t.Errorf("order = %s, %s, %s", all[0].Name, all[1].Name, all[2].Name)
		}

		limited, err := repo.ListEntries(2)
		if err != nil {
			t.Fatalf("ListEntries(2) failed: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("len = %d, want 2", len(limited))
		}
	})
}

func TestListEntriesEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		entries, err := repo.ListEntries(0)
		if err != nil {
			t.Fatalf("ListEntries failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("len = %d, want 0", len(entries))
		}
	})
}

func TestListEntriesBetween(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		start := time.Date(2025, 5, 10, 0, 0, 0, 0, time.Local)
		end := start.AddDate(0, 0, 1)

		times := []time.Time{
			start.Add(-time.Minute), // previous day
			start,                   // first instant, included
			start.Add(12 * time.Hour),
			end, // next day, excluded
		}
		for i, ts := range times {
			e := models.NewFoodEntry("meal", 100+i).WithTimestamp(ts)
			if err := repo.CreateEntry(e); err != nil {
				t.Fatalf("CreateEntry failed: %v", err)
			}
		}

		got, err := repo.ListEntriesBetween(start, end)
		if err != nil {
			t.Fatalf("ListEntriesBetween failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Calories != 102 || got[1].Calories != 101 {
			t.Errorf("calories = %d, %d, want 102, 101", got[0].Calories, got[1].Calories)
		}
	})
}

func TestDeleteEntry(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		e := models.NewFoodEntry("Pizza", 250)
		if err := repo.CreateEntry(e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}

		if err := repo.DeleteEntry(e.ID.String()[:8]); err != nil {
			t.Fatalf("DeleteEntry failed: %v", err)
		}
		if _, err := repo.GetEntry(e.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetEntry after delete: got %v, want ErrNotFound", err)
		}
		if err := repo.DeleteEntry(e.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("second DeleteEntry: got %v, want ErrNotFound", err)
		}
	})
}

func TestCreateEntryDuplicateID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		e := models.NewFoodEntry("Apple", 52)
		if err := repo.CreateEntry(e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		if err := repo.CreateEntry(e); err == nil {
			t.Error("expected error creating duplicate entry")
		}
	})
}

func TestChatMessages(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		msgs := []*models.ChatMessage{
			models.NewUserMessage("What should I eat?", at(9, 0)),
			models.NewAssistantMessage("Try oatmeal.", at(9, 1)),
			models.NewUserMessage("Thanks", at(9, 2)),
		}
		for _, m := range msgs {
			if err := repo.AppendChatMessage(m); err != nil {
				t.Fatalf("AppendChatMessage failed: %v", err)
			}
		}

		all, err := repo.ListChatMessages(0)
		if err != nil {
			t.Fatalf("ListChatMessages failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("len = %d, want 3", len(all))
		}
		if all[0].Text != "What should I eat?" || !all[0].IsUser {
			t.Errorf("first message = %+v", all[0])
		}
		if all[1].IsUser {
			t.Error("second message should be from the assistant")
		}

		latest, err := repo.ListChatMessages(2)
		if err != nil {
			t.Fatalf("ListChatMessages(2) failed: %v", err)
		}
		if len(latest) != 2 {
			t.Fatalf("len = %d, want 2", len(latest))
		}
		// The window is the newest two, still oldest first.
		if latest[0].Text != "Try oatmeal." || latest[1].Text != "Thanks" {
			t.Errorf("window = %q, %q", latest[0].Text, latest[1].Text)
		}
	})
}

func TestGetAllData(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		if err := repo.SaveProfile(&models.Profile{Weight: 60, Height: 165, Gender: models.GenderFemale,
			ActivityLevel: models.ActivitySedentary, DailyCalorieGoal: 1764}); err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}
		if err := repo.CreateEntry(models.NewFoodEntry("Banana", 89)); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		if err := repo.AppendChatMessage(models.NewUserMessage("hi", time.Now())); err != nil {
			t.Fatalf("AppendChatMessage failed: %v", err)
		}

		data, err := repo.GetAllData()
		if err != nil {
			t.Fatalf("GetAllData failed: %v", err)
		}
		if data.Tool != "kcal" {
			t.Errorf("Tool = %q, want kcal", data.Tool)
		}
		if data.Profile == nil || data.Profile.DailyCalorieGoal != 1764 {
			t.Errorf("Profile = %+v", data.Profile)
		}
		if len(data.Entries) != 1 || len(data.ChatMessages) != 1 {
			t.Errorf("entries=%d chat=%d, want 1 and 1", len(data.Entries), len(data.ChatMessages))
		}
	})
}

func TestGetAllDataWithoutProfile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		data, err := repo.GetAllData()
		if err != nil {
			t.Fatalf("GetAllData failed: %v", err)
		}
		if data.Profile != nil {
			t.Errorf("Profile = %+v, want nil", data.Profile)
		}
	})
}

func TestImportData(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		e := models.NewFoodEntry("Buckwheat", 132)
		data := &ExportData{
			Version: "1.0",
			Tool:    "kcal",
			Profile: &models.Profile{Weight: 70, Height: 175, ActivityLevel: models.ActivitySedentary, DailyCalorieGoal: 2153},
			Entries: []*models.FoodEntry{e},
			ChatMessages: []*models.ChatMessage{
				models.NewUserMessage("q", at(10, 0)),
				models.NewAssistantMessage("a", at(10, 0)),
			},
		}

		if err := repo.ImportData(data); err != nil {
			t.Fatalf("ImportData failed: %v", err)
		}

		got, err := repo.GetEntry(e.ID.String())
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.Name != "Buckwheat" {
			t.Errorf("Name = %q, want Buckwheat", got.Name)
		}
		msgs, err := repo.ListChatMessages(0)
		if err != nil {
			t.Fatalf("ListChatMessages failed: %v", err)
		}
		if len(msgs) != 2 {
			t.Errorf("len = %d, want 2", len(msgs))
		}

		// Importing the same data again collides on entry IDs.
		if err := repo.ImportData(data); err == nil {
			t.Error("expected duplicate import to fail")
		}
	})
}

func TestImportDataRejectsInvalidEntries(t *testing.T) {
	bad := func(mutate func(e *models.FoodEntry)) *models.FoodEntry {
		e := models.NewFoodEntry("Soup", 200)
		mutate(e)
		return e
	}
	tests := []struct {
		name  string
		entry *models.FoodEntry
	}{
		{"empty name", bad(func(e *models.FoodEntry) { e.Name = "" })},
		{"negative calories", bad(func(e *models.FoodEntry) { e.Calories = -500 })},
		{"negative fats", bad(func(e *models.FoodEntry) { e.Fats = -2 })},
		{"NaN protein", bad(func(e *models.FoodEntry) { e.Protein = math.NaN() })},
		{"nil id", bad(func(e *models.FoodEntry) { e.ID = uuid.Nil })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachBackend(t, func(t *testing.T, repo Repository) {
				good := models.NewFoodEntry("Bread", 250)
				data := &ExportData{
					Profile: &models.Profile{Weight: 70, Height: 175, ActivityLevel: models.ActivitySedentary},
					Entries: []*models.FoodEntry{good, tt.entry},
				}
				if err := repo.ImportData(data); err == nil {
					t.Fatal("expected import to fail")
				}

				// Nothing from a rejected import is written.
				if _, err := repo.GetEntry(good.ID.String()); !errors.Is(err, ErrNotFound) {
					t.Errorf("GetEntry(good) err = %v, want ErrNotFound", err)
				}
				if _, err := repo.GetProfile(); !errors.Is(err, ErrNotFound) {
					t.Errorf("GetProfile err = %v, want ErrNotFound", err)
				}
			})
		})
	}
}

func TestImportDataRejectsInvalidProfile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		data := &ExportData{Profile: &models.Profile{Weight: math.Inf(1), Height: 175}}
		if err := repo.ImportData(data); err == nil {
			t.Error("expected import to fail")
		}
	})
}

func TestDBClose(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := Open(filepath.Join(tmpDir, "kcal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "kcal.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path = %q, want %q", db.Path(), path)
	}
}

func TestDefaultDBPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	want := filepath.Join("/tmp/xdg-data", "kcal", "kcal.db")
	if got := DefaultDBPath(); got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}
