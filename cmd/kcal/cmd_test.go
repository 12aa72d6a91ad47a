// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands against temp stores and a local devserver.
package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/kcal/internal/config"
	"github.com/harperreed/kcal/internal/devserver"
	"github.com/harperreed/kcal/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "date and time with space", input: "2025-01-31 08:30"},
		{name: "date and time with T", input: "2025-01-31T08:30"},
		{name: "date only", input: "2025-01-31"},
		{name: "RFC3339", input: "2025-01-31T08:30:00Z"},
		{name: "RFC3339 with offset", input: "2025-01-31T08:30:00+05:00"},
		{name: "invalid format", input: "31-01-2025", wantErr: true},
		{name: "invalid random string", input: "not a date", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeIsLocal(t *testing.T) {
	result, err := parseTime("2025-01-31 08:30")
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	want := time.Date(2025, 1, 31, 8, 30, 0, 0, time.Local)
	if !result.Equal(want) {
		t.Errorf("parseTime = %v, want %v", result, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long food name", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 6, "abcdef"},
		{"abcdefgh", 6, "abcdefgh"},
		{"", 3, "   "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestFormatGrams(t *testing.T) {
	tests := map[float64]string{
		0:     "0",
		10:    "10",
		12.5:  "12.5",
		12.34: "12.3",
	}
	for in, want := range tests {
		if got := formatGrams(in); got != want {
			t.Errorf("formatGrams(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		value, peak, width int
		want               int
	}{
		{0, 2000, 30, 0},
		{2000, 2000, 30, 30},
		{1000, 2000, 30, 15},
		{10, 2000, 30, 1},
		{3000, 2000, 30, 30},
		{500, 0, 30, 0},
	}
	for _, tt := range tests {
		got := strings.Count(bar(tt.value, tt.peak, tt.width), "█")
		if got != tt.want {
			t.Errorf("bar(%d, %d, %d) has %d cells, want %d", tt.value, tt.peak, tt.width, got, tt.want)
		}
	}
}

func TestDescribeExpiry(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	if got := describeExpiry(now.Add(59*time.Minute+50*time.Second), now); got != "Token: valid for 1h0m0s" {
		t.Errorf("valid token = %q", got)
	}
	if got := describeExpiry(now.Add(-time.Minute), now); !strings.HasPrefix(got, "Token: expired at") {
		t.Errorf("expired token = %q", got)
	}
}

func TestResolvePassword(t *testing.T) {
	t.Setenv(EnvPassword, "")
	authPassword = ""
	t.Cleanup(func() { authPassword = "" })

	got, err := resolvePassword(strings.NewReader("typed\n"))
	if err != nil || got != "typed" {
		t.Errorf("from reader = %q, %v", got, err)
	}

	if _, err := resolvePassword(strings.NewReader("\n")); err == nil {
		t.Error("expected error for empty password")
	}

	t.Setenv(EnvPassword, "from-env")
	if got, _ := resolvePassword(strings.NewReader("")); got != "from-env" {
		t.Errorf("from env = %q", got)
	}

	authPassword = "from-flag"
	if got, _ := resolvePassword(strings.NewReader("")); got != "from-flag" {
		t.Errorf("from flag = %q", got)
	}
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "kcal" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "kcal")
	}
	for _, name := range []string{"data-dir", "backend", "api-url", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag --%s", name)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"profile", "add", "suggest", "list", "delete", "today", "day", "week",
		"chat", "register", "login", "logout", "auth", "analyze",
		"export", "import", "migrate", "mcp", "devserver", "install-skill",
	}
	have := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("expected %s command to be registered", name)
		}
	}
}

func TestCmdAliases(t *testing.T) {
	tests := map[string][]string{
		"add":    {"a"},
		"list":   {"ls", "l"},
		"delete": {"del", "rm"},
	}
	for name, aliases := range tests {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil {
			t.Fatalf("Find(%s) failed: %v", name, err)
		}
		for _, alias := range aliases {
			if !cmd.HasAlias(alias) {
				t.Errorf("%s should have alias %q", name, alias)
			}
		}
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	want := []string{"json", "yaml", "markdown"}
	if strings.Join(exportCmd.ValidArgs, ",") != strings.Join(want, ",") {
		t.Errorf("ValidArgs = %v, want %v", exportCmd.ValidArgs, want)
	}
}

// setupTestCLI points config and data at temp directories and returns the data dir.
func setupTestCLI(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kcal-cli-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv(config.EnvAPIBaseURL, "")
	t.Setenv(EnvPassword, "")

	t.Cleanup(func() {
		if repo != nil {
			repo.Close()
			repo = nil
		}
	})

	return filepath.Join(tmpDir, "data", "kcal")
}

// runCLI executes the root command with fresh flag values.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()

	if repo != nil {
		repo.Close()
		repo = nil
	}
	flagDataDir, flagBackend, flagAPIURL, flagVerbose = "", "", "", false
	addAt, addProtein, addFats, addCarbs, addGrams, addPush = "", "", "", "", "", false
	profileWeight, profileHeight, profileActivity, profileGender = "", "", "sedentary", ""
	listLimit, listDate, weekDays, chatHistoryLimit = 20, "", 7, 20
	exportOutput, exportSince = "", ""
	migrateTo, migrateDest, migrateForce = "markdown", "", false
	authPassword, registerName = "", ""
	analyzeLog = false

	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func openTestDB(t *testing.T, dataDir string) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(dataDir, "kcal.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestProfileSetCmd(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := runCLI(t, "profile"); err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	err := runCLI(t, "profile", "set", "--weight", "70", "--height", "175", "--activity", "active", "--gender", "male")
	if err != nil {
		t.Fatalf("profile set failed: %v", err)
	}

	p, err := openTestDB(t, dataDir).GetProfile()
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.DailyCalorieGoal != 2788 {
		t.Errorf("goal = %d, want 2788", p.DailyCalorieGoal)
	}
}

func TestProfileSetCmdInvalid(t *testing.T) {
	setupTestCLI(t)

	for _, weight := range []string{"abc", "Inf", "NaN"} {
		if err := runCLI(t, "profile", "set", "--weight", weight, "--height", "175"); err == nil {
			t.Errorf("expected error for weight %q", weight)
		}
	}
}

func TestAddCmdWithDB(t *testing.T) {
	dataDir := setupTestCLI(t)

	err := runCLI(t, "add", "Salad", "450", "--protein", "10", "--fats", "20", "--carbs", "30", "--grams", "250", "--at", "2025-05-10 13:00")
	if err != nil {
		t.Fatalf("add command failed: %v", err)
	}

	entries, err := openTestDB(t, dataDir).ListEntries(0)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Name != "Salad" || e.Calories != 450 || e.Protein != 10 || e.Carbs != 30 || e.WeightGrams != 250 {
		t.Errorf("entry = %+v", e)
	}
	want := time.Date(2025, 5, 10, 13, 0, 0, 0, time.Local)
	if !e.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, want)
	}
}

func TestAddCmdInvalid(t *testing.T) {
	setupTestCLI(t)

	tests := [][]string{
		{"add", " ", "300"},
		{"add", "Ghost", "-5"},
		{"add", "Toast", "abc"},
		{"add", "Toast", "80", "--protein", "-1"},
		{"add", "Toast", "80", "--at", "invalid-date"},
		{"add", "Toast", "80", "--fats", "NaN"},
		{"add", "Toast", "80", "--grams", "Inf"},
		{"add", "Toast", "80", "--weight", "100"},
	}
	for _, args := range tests {
		if err := runCLI(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestListAndDeleteCmd(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := runCLI(t, "list"); err != nil {
		t.Fatalf("list on empty store failed: %v", err)
	}
	if err := runCLI(t, "add", "Oatmeal", "300"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := runCLI(t, "list", "-n", "5"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := runCLI(t, "list", "--date", time.Now().Format("2006-01-02")); err != nil {
		t.Fatalf("list --date failed: %v", err)
	}
	if err := runCLI(t, "list", "--date", "tomorrow"); err == nil {
		t.Error("expected error for bad --date")
	}

	db := openTestDB(t, dataDir)
	entries, err := db.ListEntries(0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListEntries = %d, %v", len(entries), err)
	}
	prefix := entries[0].ID.String()[:8]
	db.Close()

	if err := runCLI(t, "delete", prefix); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := runCLI(t, "delete", prefix); err == nil {
		t.Error("expected error deleting a removed entry")
	}

	entries, err = openTestDB(t, dataDir).ListEntries(0)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected 0 entries after delete, got %d", len(entries))
	}
}

func TestSummaryCmds(t *testing.T) {
	setupTestCLI(t)

	if err := runCLI(t, "profile", "set", "--weight", "70", "--height", "175"); err != nil {
		t.Fatalf("profile set failed: %v", err)
	}
	if err := runCLI(t, "add", "Pizza", "800", "--at", "2025-05-09 20:00"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	for _, args := range [][]string{{"today"}, {"day", "2025-05-09"}, {"week"}, {"week", "--days", "3"}, {"suggest", "app"}} {
		if err := runCLI(t, args...); err != nil {
			t.Errorf("%v failed: %v", args, err)
		}
	}
	if err := runCLI(t, "day", "09/05/2025"); err == nil {
		t.Error("expected error for malformed day")
	}
}

func TestExportImportCmd(t *testing.T) {
	dataDir := setupTestCLI(t)
	outFile := filepath.Join(t.TempDir(), "backup.json")

	if err := runCLI(t, "add", "Oatmeal", "300", "--at", "2025-05-09 08:00"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	for _, format := range []string{"json", "yaml", "markdown"} {
		if err := runCLI(t, "export", format); err != nil {
			t.Errorf("export %s failed: %v", format, err)
		}
	}
	if err := runCLI(t, "export", "csv"); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := runCLI(t, "export", "markdown", "--since", "yesterday"); err == nil {
		t.Error("expected error for bad --since")
	}
	if err := runCLI(t, "export", "json", "-o", outFile); err != nil {
		t.Fatalf("export to file failed: %v", err)
	}

	otherDir := filepath.Join(filepath.Dir(dataDir), "other")
	if err := runCLI(t, "--data-dir", otherDir, "import", outFile); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	entries, err := openTestDB(t, otherDir).ListEntries(0)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Oatmeal" {
		t.Errorf("imported entries = %v", entries)
	}
}

func TestMarkdownBackendCmd(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := runCLI(t, "--backend", "markdown", "add", "Apple", "52", "--at", "2025-05-10 10:00"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dataDir, "entries", "2025", "05", "2025-05-10-apple-*.md"))
	if err != nil || len(matches) != 1 {
		t.Errorf("entry files = %v, %v", matches, err)
	}

	if err := runCLI(t, "--backend", "nope", "list"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestMigrateCmd(t *testing.T) {
	setupTestCLI(t)
	dest := filepath.Join(t.TempDir(), "md")

	if err := runCLI(t, "add", "Oatmeal", "300"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := runCLI(t, "migrate"); err == nil {
		t.Error("expected error without --dest")
	}
	if err := runCLI(t, "migrate", "--to", "markdown", "--dest", dest); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	md, err := storage.NewMarkdownStore(dest)
	if err != nil {
		t.Fatalf("NewMarkdownStore failed: %v", err)
	}
	entries, err := md.ListEntries(0)
	if err != nil || len(entries) != 1 {
		t.Errorf("migrated entries = %d, %v", len(entries), err)
	}

	if err := runCLI(t, "migrate", "--to", "markdown", "--dest", dest); err == nil {
		t.Error("expected error for non-empty destination")
	}
}

var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

func TestRemoteCmdsAgainstDevserver(t *testing.T) {
	dataDir := setupTestCLI(t)
	gin.SetMode(gin.TestMode)

	srv, err := devserver.New(devserver.Options{Secret: []byte("cli-secret"), BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("devserver.New failed: %v", err)
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	t.Setenv(config.EnvAPIBaseURL, hs.URL)
	t.Setenv(EnvPassword, "hunter22")

	if err := runCLI(t, "auth", "status"); err != nil {
		t.Fatalf("auth status before login failed: %v", err)
	}
	if err := runCLI(t, "analyze", "missing.jpg"); err == nil {
		t.Error("expected error for missing image")
	}

	if err := runCLI(t, "register", "me@example.com", "--name", "Me"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	if cfg.Email != "me@example.com" || cfg.AccessToken == "" || cfg.RefreshToken == "" {
		t.Fatalf("saved config = %+v", cfg)
	}

	if err := runCLI(t, "login", "me@example.com", "--password", "wrong"); err == nil {
		t.Error("expected login failure with wrong password")
	}
	if err := runCLI(t, "auth", "status"); err != nil {
		t.Errorf("auth status failed: %v", err)
	}
	if err := runCLI(t, "auth", "refresh"); err != nil {
		t.Errorf("auth refresh failed: %v", err)
	}

	if err := runCLI(t, "profile", "set", "--weight", "70", "--height", "175", "--activity", "active", "--gender", "male"); err != nil {
		t.Fatalf("profile set failed: %v", err)
	}
	if err := runCLI(t, "add", "Oatmeal", "300", "--push"); err != nil {
		t.Fatalf("add --push failed: %v", err)
	}

	img := filepath.Join(t.TempDir(), "lunch.jpg")
	if err := os.WriteFile(img, jpeg, 0600); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "analyze", img, "--log"); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if err := runCLI(t, "chat", "What", "should", "I", "eat?"); err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	for _, args := range [][]string{{"chat", "history"}, {"chat", "context"}} {
		if err := runCLI(t, args...); err != nil {
			t.Errorf("%v failed: %v", args, err)
		}
	}

	db := openTestDB(t, dataDir)
	entries, err := db.ListEntries(0)
	if err != nil || len(entries) != 2 {
		t.Errorf("entries = %d, %v", len(entries), err)
	}
	messages, err := db.ListChatMessages(0)
	if err != nil || len(messages) != 2 {
		t.Fatalf("chat messages = %d, %v", len(messages), err)
	}
	if !messages[0].IsUser || messages[0].Text != "What should I eat?" || messages[1].IsUser {
		t.Errorf("messages = %+v, %+v", messages[0], messages[1])
	}
	db.Close()

	if err := runCLI(t, "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	cfg, _ = config.Load()
	if cfg.AccessToken != "" || cfg.Email != "" {
		t.Errorf("config after logout = %+v", cfg)
	}
	if err := runCLI(t, "analyze", img); err == nil {
		t.Error("expected analyze to fail after logout")
	}
}
