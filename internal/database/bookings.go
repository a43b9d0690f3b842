package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/models"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// bookingColumns joins the live property so the resolver can use it as its
// second source. The LEFT JOIN keeps bookings visible after their listing is
// deleted.
const bookingColumns = `b.id, b.property_id, b.client_id, date(b.check_in_date), date(b.check_out_date),
               b.guest_count, b.total_price, b.status, b.special_requests, b.full_name,
               b.email_or_phone, b.travel_type, b.property_name, b.property_location,
               b.property_price_per_night, b.property_max_guests, b.property_images,
               b.created_at, b.updated_at,
               p.id, p.owner_id, p.name, p.location, p.price_per_night, p.max_guests,
               p.images, p.category, p.published, p.available`

const bookingFrom = ` FROM bookings b LEFT JOIN properties p ON p.id = b.property_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b                   models.Booking
		checkIn, checkOut   string
		imagesJSON          string
		propID, propOwner   sql.NullString
		propName, propLoc   sql.NullString
		propPrice           sql.NullFloat64
		propMaxGuests       sql.NullInt64
		propImages, propCat sql.NullString
		propPub, propAvail  sql.NullBool
	)

	err := row.Scan(
		&b.ID, &b.PropertyID, &b.ClientID, &checkIn, &checkOut,
		&b.GuestCount, &b.TotalPrice, &b.Status, &b.SpecialRequests, &b.FullName,
		&b.EmailOrPhone, &b.TravelType, &b.PropertyName, &b.PropertyLocation,
		&b.PropertyPricePerNight, &b.PropertyMaxGuests, &imagesJSON,
		&b.CreatedAt, &b.UpdatedAt,
		&propID, &propOwner, &propName, &propLoc, &propPrice, &propMaxGuests,
		&propImages, &propCat, &propPub, &propAvail,
	)
	if err != nil {
		return nil, err
	}

	if b.CheckInDate, err = time.Parse(dateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check-in date %s: %w", checkIn, err)
	}
	if b.CheckOutDate, err = time.Parse(dateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check-out date %s: %w", checkOut, err)
	}
	b.PropertyImages = imagesFromJSON(imagesJSON)

	if propID.Valid {
		b.JoinedProperty = &models.Property{
			ID:            propID.String,
			OwnerID:       propOwner.String,
			Name:          propName.String,
			Location:      propLoc.String,
			PricePerNight: propPrice.Float64,
			MaxGuests:     int(propMaxGuests.Int64),
			Images:        imagesFromJSON(propImages.String),
			Category:      propCat.String,
			Published:     propPub.Bool,
			Available:     propAvail.Bool,
		}
	}

	return &b, nil
}

func imagesFromJSON(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return []string{}
	}
	return images
}

func imagesToJSON(images []string) string {
	if len(images) == 0 {
		return "[]"
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (db *DB) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + bookingFrom + ` WHERE b.id = ?`
	booking, err := scanBooking(db.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) BookingsByClient(ctx context.Context, clientID, status string, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + bookingFrom + ` WHERE b.client_id = ?`
	args := []interface{}{clientID}
	if status != "" && status != models.StatusAll {
		query += ` AND b.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY b.created_at DESC LIMIT ?`
	args = append(args, listLimit(limit))

	return db.queryBookings(ctx, query, args...)
}

func (db *DB) BookingsByPropertyIDs(ctx context.Context, propertyIDs []string, status string, limit int) ([]*models.Booking, error) {
	if len(propertyIDs) == 0 {
		return []*models.Booking{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(propertyIDs)), ",")
	query := `SELECT ` + bookingColumns + bookingFrom + ` WHERE b.property_id IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(propertyIDs)+2)
	for _, id := range propertyIDs {
		args = append(args, id)
	}
	if status != "" && status != models.StatusAll {
		query += ` AND b.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY b.created_at DESC LIMIT ?`
	args = append(args, listLimit(limit))

	return db.queryBookings(ctx, query, args...)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	now := time.Now()

	query := `INSERT INTO bookings (
                id, property_id, client_id, check_in_date, check_out_date,
                guest_count, total_price, status, special_requests, full_name,
                email_or_phone, travel_type, property_name, property_location,
                property_price_per_night, property_max_guests, property_images,
                created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		booking.ID,
		booking.PropertyID,
		booking.ClientID,
		booking.CheckInDate.Format(dateLayout),
		booking.CheckOutDate.Format(dateLayout),
		booking.GuestCount,
		booking.TotalPrice,
		booking.Status,
		booking.SpecialRequests,
		booking.FullName,
		booking.EmailOrPhone,
		booking.TravelType,
		booking.PropertyName,
		booking.PropertyLocation,
		booking.PropertyPricePerNight,
		booking.PropertyMaxGuests,
		imagesToJSON(booking.PropertyImages),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return db.BookingByID(ctx, id)
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultListLimit
	}
	return limit
}
