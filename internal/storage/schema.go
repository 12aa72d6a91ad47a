// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for the profile, food entries, and chat messages.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY,
		weight REAL NOT NULL,
		height REAL NOT NULL,
		gender TEXT NOT NULL DEFAULT '',
		activity_level TEXT NOT NULL,
		daily_calorie_goal INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS food_entries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		calories INTEGER NOT NULL CHECK (calories >= 0),
		protein REAL NOT NULL DEFAULT 0,
		fats REAL NOT NULL DEFAULT 0,
		carbs REAL NOT NULL DEFAULT 0,
		weight_grams REAL NOT NULL DEFAULT 0,
		eaten_at TEXT NOT NULL,
		image_ref TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		is_user INTEGER NOT NULL,
		sent_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_food_entries_eaten ON food_entries(eaten_at DESC);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_sent ON chat_messages(sent_at);
	`

	_, err := d.db.Exec(schema)
	return err
}
