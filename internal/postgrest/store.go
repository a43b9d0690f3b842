package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/models"

	pg "github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const (
	bookingsTable   = "bookings"
	propertiesTable = "properties"
	profilesTable   = "profiles"

	dateLayout = "2006-01-02"
)

// Store talks to the hosted Supabase project over PostgREST. It is the
// production counterpart of the SQLite store and satisfies domain.Store.
type Store struct {
	client *supabase.Client
}

func New(url, anonKey string) (*Store, error) {
	client, err := supabase.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *supabase.Client) *Store {
	return &Store{client: client}
}

// bookingRow mirrors the REST representation; timestamps arrive as strings.
// The embedded properties resource carries the live listing when it still
// exists.
type bookingRow struct {
	ID                    string       `json:"id"`
	PropertyID            string       `json:"property_id"`
	ClientID              string       `json:"client_id"`
	CheckInDate           string       `json:"check_in_date"`
	CheckOutDate          string       `json:"check_out_date"`
	GuestCount            int          `json:"guest_count"`
	TotalPrice            float64      `json:"total_price"`
	Status                string       `json:"status"`
	SpecialRequests       string       `json:"special_requests"`
	FullName              string       `json:"full_name"`
	EmailOrPhone          string       `json:"email_or_phone"`
	TravelType            string       `json:"travel_type"`
	PropertyName          string       `json:"property_name"`
	PropertyLocation      string       `json:"property_location"`
	PropertyPricePerNight float64      `json:"property_price_per_night"`
	PropertyMaxGuests     int          `json:"property_max_guests"`
	PropertyImages        []string     `json:"property_images"`
	CreatedAt             string       `json:"created_at"`
	UpdatedAt             string       `json:"updated_at"`
	Properties            *propertyRow `json:"properties"`
}

type propertyRow struct {
	ID            string   `json:"id"`
	OwnerID       string   `json:"owner_id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	PricePerNight float64  `json:"price_per_night"`
	MaxGuests     int      `json:"max_guests"`
	Images        []string `json:"images"`
	Category      string   `json:"category"`
	Published     bool     `json:"published"`
	Available     bool     `json:"available"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// bookingSelect embeds the live property so the resolver gets its joined
// source in one round trip.
const bookingSelect = "*, properties(*)"

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", dateLayout} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func (r bookingRow) toModel() *models.Booking {
	b := &models.Booking{
		ID:                    r.ID,
		PropertyID:            r.PropertyID,
		ClientID:              r.ClientID,
		CheckInDate:           parseTimestamp(r.CheckInDate),
		CheckOutDate:          parseTimestamp(r.CheckOutDate),
		GuestCount:            r.GuestCount,
		TotalPrice:            r.TotalPrice,
		Status:                r.Status,
		SpecialRequests:       r.SpecialRequests,
		FullName:              r.FullName,
		EmailOrPhone:          r.EmailOrPhone,
		TravelType:            r.TravelType,
		PropertyName:          r.PropertyName,
		PropertyLocation:      r.PropertyLocation,
		PropertyPricePerNight: r.PropertyPricePerNight,
		PropertyMaxGuests:     r.PropertyMaxGuests,
		PropertyImages:        r.PropertyImages,
		CreatedAt:             parseTimestamp(r.CreatedAt),
		UpdatedAt:             parseTimestamp(r.UpdatedAt),
	}
	if b.PropertyImages == nil {
		b.PropertyImages = []string{}
	}
	if r.Properties != nil {
		b.JoinedProperty = r.Properties.toModel()
	}
	return b
}

func (r propertyRow) toModel() *models.Property {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return &models.Property{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Name:          r.Name,
		Location:      r.Location,
		PricePerNight: r.PricePerNight,
		MaxGuests:     r.MaxGuests,
		Images:        images,
		Category:      r.Category,
		Published:     r.Published,
		Available:     r.Available,
		CreatedAt:     parseTimestamp(r.CreatedAt),
		UpdatedAt:     parseTimestamp(r.UpdatedAt),
	}
}

func (s *Store) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	data, _, err := s.client.From(bookingsTable).
		Select(bookingSelect, "exact", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	var rows []bookingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return rows[0].toModel(), nil
}

func (s *Store) BookingsByClient(ctx context.Context, clientID, status string, limit int) ([]*models.Booking, error) {
	query := s.client.From(bookingsTable).
		Select(bookingSelect, "exact", false).
		Eq("client_id", clientID)
	if status != "" && status != models.StatusAll {
		query = query.Eq("status", status)
	}
	data, _, err := query.
		Order("created_at", &pg.OrderOpts{Ascending: false}).
		Limit(listLimit(limit), "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get client bookings: %w", err)
	}
	return unmarshalBookings(data)
}

func (s *Store) BookingsByPropertyIDs(ctx context.Context, propertyIDs []string, status string, limit int) ([]*models.Booking, error) {
	if len(propertyIDs) == 0 {
		return []*models.Booking{}, nil
	}

	query := s.client.From(bookingsTable).
		Select(bookingSelect, "exact", false).
		In("property_id", propertyIDs)
	if status != "" && status != models.StatusAll {
		query = query.Eq("status", status)
	}
	data, _, err := query.
		Order("created_at", &pg.OrderOpts{Ascending: false}).
		Limit(listLimit(limit), "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get owner bookings: %w", err)
	}
	return unmarshalBookings(data)
}

func unmarshalBookings(data []byte) ([]*models.Booking, error) {
	var rows []bookingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookings: %w", err)
	}
	bookings := make([]*models.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.toModel())
	}
	return bookings, nil
}

func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}

	record := map[string]interface{}{
		"property_id":              booking.PropertyID,
		"client_id":                booking.ClientID,
		"check_in_date":            booking.CheckInDate.Format(dateLayout),
		"check_out_date":           booking.CheckOutDate.Format(dateLayout),
		"guest_count":              booking.GuestCount,
		"total_price":              booking.TotalPrice,
		"status":                   booking.Status,
		"special_requests":         booking.SpecialRequests,
		"full_name":                booking.FullName,
		"email_or_phone":           booking.EmailOrPhone,
		"travel_type":              booking.TravelType,
		"property_name":            booking.PropertyName,
		"property_location":        booking.PropertyLocation,
		"property_price_per_night": booking.PropertyPricePerNight,
		"property_max_guests":      booking.PropertyMaxGuests,
		"property_images":          booking.PropertyImages,
	}
	if booking.ID != "" {
		record["id"] = booking.ID
	}

	data, _, err := s.client.From(bookingsTable).
		Insert(record, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	var rows []bookingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal created booking: %w", err)
	}
	if len(rows) > 0 {
		created := rows[0].toModel()
		booking.ID = created.ID
		booking.CreatedAt = created.CreatedAt
		booking.UpdatedAt = created.UpdatedAt
	}
	return nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	record := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}

	data, _, err := s.client.From(bookingsTable).
		Update(record, "representation", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	var rows []bookingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated booking: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	// Re-read with the embedded property so callers get the joined listing.
	return s.BookingByID(ctx, id)
}

func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	data, _, err := s.client.From(bookingsTable).
		Delete("representation", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal delete response: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) PropertyByID(ctx context.Context, id string) (*models.Property, error) {
	data, _, err := s.client.From(propertiesTable).
		Select("*", "exact", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	var rows []propertyRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal property: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return rows[0].toModel(), nil
}

func (s *Store) PropertyIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	data, _, err := s.client.From(propertiesTable).
		Select("id", "exact", false).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get owner properties: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal property ids: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (s *Store) CreateProperty(ctx context.Context, property *models.Property) error {
	record := map[string]interface{}{
		"owner_id":        property.OwnerID,
		"name":            property.Name,
		"location":        property.Location,
		"price_per_night": property.PricePerNight,
		"max_guests":      property.MaxGuests,
		"images":          property.Images,
		"category":        property.Category,
		"published":       property.Published,
		"available":       property.Available,
	}
	if property.ID != "" {
		record["id"] = property.ID
	}

	data, _, err := s.client.From(propertiesTable).
		Insert(record, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	var rows []propertyRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal created property: %w", err)
	}
	if len(rows) > 0 {
		property.ID = rows[0].ID
	}
	return nil
}

func (s *Store) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	data, _, err := s.client.From(profilesTable).
		Select("*", "exact", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var rows []struct {
		ID        string `json:"id"`
		FullName  string `json:"full_name"`
		Email     string `json:"email"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return &models.Profile{
		ID:        rows[0].ID,
		FullName:  rows[0].FullName,
		Email:     rows[0].Email,
		CreatedAt: parseTimestamp(rows[0].CreatedAt),
	}, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	record := map[string]interface{}{
		"full_name": profile.FullName,
		"email":     profile.Email,
	}
	if profile.ID != "" {
		record["id"] = profile.ID
	}

	data, _, err := s.client.From(profilesTable).
		Insert(record, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal created profile: %w", err)
	}
	if len(rows) > 0 {
		profile.ID = rows[0].ID
	}
	return nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultListLimit
	}
	return limit
}
