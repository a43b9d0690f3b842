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

func (db *DB) PropertyByID(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT id, owner_id, name, location, price_per_night, max_guests,
                     images, category, published, available, created_at, updated_at
              FROM properties WHERE id = ?`

	var p models.Property
	var imagesJSON string
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Location, &p.PricePerNight, &p.MaxGuests,
		&imagesJSON, &p.Category, &p.Published, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	p.Images = imagesFromJSON(imagesJSON)
	return &p, nil
}

func (db *DB) PropertyIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := db.db.QueryContext(ctx, `SELECT id FROM properties WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner properties: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan property id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) CreateProperty(ctx context.Context, property *models.Property) error {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	now := time.Now()

	query := `INSERT INTO properties (
                id, owner_id, name, location, price_per_night, max_guests,
                images, category, published, available, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		property.ID,
		property.OwnerID,
		property.Name,
		property.Location,
		property.PricePerNight,
		property.MaxGuests,
		imagesToJSON(property.Images),
		property.Category,
		property.Published,
		property.Available,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	property.CreatedAt = now
	property.UpdatedAt = now
	return nil
}

// DeleteProperty removes a listing. Bookings that reference it keep their
// stored display snapshot and stay fully readable.
func (db *DB) DeleteProperty(ctx context.Context, id string) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
