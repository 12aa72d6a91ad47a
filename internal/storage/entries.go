// ABOUTME: Food entry CRUD operations for SQLite storage.
// ABOUTME: Implements Repository interface methods for food entries.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/kcal/internal/models"
)

const entryColumns = `id, name, calories, protein, fats, carbs, weight_grams, eaten_at, image_ref, created_at`

// CreateEntry stores a new food entry in the database.
func (d *DB) CreateEntry(e *models.FoodEntry) error {
	query := `
		INSERT INTO food_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		e.ID.String(),
		e.Name,
		e.Calories,
		e.Protein,
		e.Fats,
		e.Carbs,
		e.WeightGrams,
		formatTime(e.Timestamp),
		e.ImageRef,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// GetEntry retrieves a food entry by ID or ID prefix.
func (d *DB) GetEntry(idOrPrefix string) (*models.FoodEntry, error) {
	id, err := d.resolveID("food_entries", idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM food_entries WHERE id = ?`
	rows, err := d.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return entries[0], nil
}

// ListEntries retrieves food entries, most recent first.
func (d *DB) ListEntries(limit int) ([]*models.FoodEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM food_entries ORDER BY eaten_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListEntriesBetween retrieves entries with start <= timestamp < end,
// most recent first.
func (d *DB) ListEntriesBetween(start, end time.Time) ([]*models.FoodEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM food_entries
		WHERE eaten_at >= ? AND eaten_at < ?
		ORDER BY eaten_at DESC
	`
	rows, err := d.db.Query(query, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("list entries between: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// DeleteEntry removes a food entry by ID or prefix.
func (d *DB) DeleteEntry(idOrPrefix string) error {
	id, err := d.resolveID("food_entries", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM food_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}

	return nil
}

// resolveID finds the full ID from a prefix in the given table.
func (d *DB) resolveID(table, idOrPrefix string) (string, error) {
	// If it looks like a full UUID, use it directly
	if isFullUUID(idOrPrefix) {
		return idOrPrefix, nil
	}
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	// Search by prefix
	query := `SELECT id FROM ` + table + ` WHERE id LIKE ? || '%'`
	rows, err := d.db.Query(query, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}

	return matches[0], nil
}

// scanEntries scans multiple rows into a slice of FoodEntries.
func scanEntries(rows *sql.Rows) ([]*models.FoodEntry, error) {
	var entries []*models.FoodEntry

	for rows.Next() {
		var e models.FoodEntry
		var idStr, eatenAt, createdAt string
		var imageRef sql.NullString

		err := rows.Scan(&idStr, &e.Name, &e.Calories, &e.Protein, &e.Fats, &e.Carbs,
			&e.WeightGrams, &eatenAt, &imageRef, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		e.ID, _ = uuid.Parse(idStr)
		e.Timestamp = parseTime(eatenAt)
		e.CreatedAt = parseTime(createdAt)
		if imageRef.Valid {
			e.ImageRef = &imageRef.String
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// isNotFound reports whether err is a not-found error from any backend.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
