package domain

import (
	"context"

	"glampbook/internal/models"
)

// Store is the storage collaborator behind the booking core. Two
// implementations exist: the PostgREST-backed one used against the hosted
// service, and the SQLite one used locally and in tests.
type Store interface {
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	BookingsByClient(ctx context.Context, clientID, status string, limit int) ([]*models.Booking, error)
	BookingsByPropertyIDs(ctx context.Context, propertyIDs []string, status string, limit int) ([]*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error

	PropertyByID(ctx context.Context, id string) (*models.Property, error)
	PropertyIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	CreateProperty(ctx context.Context, property *models.Property) error

	ProfileByID(ctx context.Context, id string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
}

// ChangeKind values carried by booking change notifications.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Change is one booking change notification on the push channel.
type Change struct {
	Kind       string
	BookingID  string
	ClientID   string
	PropertyID string
	Status     string
}

// ChangePublisher is the write side of the push channel.
type ChangePublisher interface {
	Publish(change Change)
}

// ChangeFeed is the read side of the push channel. The filter runs on the
// delivery path, so subscribers only see changes scoped to them. The returned
// function unsubscribes; calling it more than once is harmless.
type ChangeFeed interface {
	Subscribe(filter func(Change) bool, handler func(Change)) (func(), error)
}

// PropertyCache keeps short-lived copies of listings looked up by the
// resolver's fallback fetch. Get returns (nil, nil) on a miss.
type PropertyCache interface {
	Get(ctx context.Context, id string) (*models.Property, error)
	Set(ctx context.Context, property *models.Property) error
}
