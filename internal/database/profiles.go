package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/models"

	"github.com/google/uuid"
)

func (db *DB) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := db.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, created_at FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.FullName, &p.Email, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (db *DB) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now()

	_, err := db.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, email, created_at) VALUES (?, ?, ?, ?)`,
		profile.ID, profile.FullName, profile.Email, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	profile.CreatedAt = now
	return nil
}
