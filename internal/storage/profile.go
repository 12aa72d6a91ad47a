// ABOUTME: Profile persistence for SQLite storage.
// ABOUTME: The profile is a singleton row; reads take the first row.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/kcal/internal/models"
)

// GetProfile returns the stored profile, or ErrNotFound if none was saved.
func (d *DB) GetProfile() (*models.Profile, error) {
	query := `
		SELECT weight, height, gender, activity_level, daily_calorie_goal, updated_at
		FROM profile
		ORDER BY id
		LIMIT 1
	`
	var p models.Profile
	var gender, activity, updatedAt string

	err := d.db.QueryRow(query).Scan(&p.Weight, &p.Height, &gender, &activity, &p.DailyCalorieGoal, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.Gender = models.ParseGender(gender)
	p.ActivityLevel = models.ParseActivityLevel(activity)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// SaveProfile creates the profile on first save and updates it in place after.
func (d *DB) SaveProfile(p *models.Profile) error {
	query := `
		INSERT INTO profile (id, weight, height, gender, activity_level, daily_calorie_goal, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			weight = excluded.weight,
			height = excluded.height,
			gender = excluded.gender,
			activity_level = excluded.activity_level,
			daily_calorie_goal = excluded.daily_calorie_goal,
			updated_at = excluded.updated_at
	`
	_, err := d.db.Exec(query,
		p.Weight,
		p.Height,
		string(p.Gender),
		string(p.ActivityLevel),
		p.DailyCalorieGoal,
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
