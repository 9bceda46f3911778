package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HaGotHem/optines/internal/models"
)

const workingHoursKey = "working_hours"

type SettingsRepository struct {
	db       *sql.DB
	defaults models.WorkingHours
}

// NewSettingsRepository returns a store that answers defaults until hours
// have been saved.
func NewSettingsRepository(db *sql.DB, defaults models.WorkingHours) *SettingsRepository {
	return &SettingsRepository{db: db, defaults: defaults}
}

func (r *SettingsRepository) GetWorkingHours(ctx context.Context) (models.WorkingHours, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, workingHoursKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaults, nil
	}
	if err != nil {
		return models.WorkingHours{}, fmt.Errorf("get working hours: %w", err)
	}

	var wh models.WorkingHours
	if err := json.Unmarshal([]byte(raw), &wh); err != nil {
		return models.WorkingHours{}, fmt.Errorf("parse working hours: %w", err)
	}
	return wh, nil
}

func (r *SettingsRepository) SaveWorkingHours(ctx context.Context, wh models.WorkingHours) error {
	b, err := json.Marshal(wh)
	if err != nil {
		return fmt.Errorf("marshal working hours: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, workingHoursKey, string(b))
	if err != nil {
		return fmt.Errorf("save working hours: %w", err)
	}
	return nil
}
