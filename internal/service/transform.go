package service

import (
	"context"

	"glampbook/internal/domain"
	"glampbook/internal/models"
	"glampbook/internal/resolver"

	"github.com/rs/zerolog"
)

const (
	unknownClientName    = "Client inconnu"
	unknownClientContact = "Contact inconnu"
)

// Transformer assembles the client-facing booking view: scalar fields from
// the booking, the property side from the resolver, and the counterparty
// block. It is read-only; a profile lookup miss degrades to placeholder text
// instead of failing the row.
type Transformer struct {
	store    domain.Store
	resolver *resolver.Resolver
	logger   *zerolog.Logger
}

func NewTransformer(store domain.Store, res *resolver.Resolver, logger *zerolog.Logger) *Transformer {
	return &Transformer{store: store, resolver: res, logger: logger}
}

// ToView builds the view model for one booking as seen by the given role.
// This is the only seam where the two dashboards diverge: the owner dashboard
// attaches the client profile as counterparty, the client dashboard carries
// the booking's own contact snapshot.
func (t *Transformer) ToView(ctx context.Context, booking *models.Booking, role string) models.BookingView {
	view := models.BookingView{
		ID:              booking.ID,
		CheckInDate:     booking.CheckInDate,
		CheckOutDate:    booking.CheckOutDate,
		TotalPrice:      booking.TotalPrice,
		Status:          booking.Status,
		GuestCount:      booking.GuestCount,
		SpecialRequests: booking.SpecialRequests,
		FullName:        booking.FullName,
		EmailOrPhone:    booking.EmailOrPhone,
		TravelType:      booking.TravelType,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
		Property:        t.resolver.Resolve(ctx, booking),
	}

	if role == models.RoleOwner {
		view.Client = t.clientCounterparty(ctx, booking)
	} else {
		view.Client = models.ClientView{
			ID:       booking.ClientID,
			FullName: booking.FullName,
			Email:    booking.EmailOrPhone,
		}
	}

	return view
}

// ToViews transforms a whole list.
func (t *Transformer) ToViews(ctx context.Context, bookings []*models.Booking, role string) []models.BookingView {
	views := make([]models.BookingView, 0, len(bookings))
	for _, booking := range bookings {
		views = append(views, t.ToView(ctx, booking, role))
	}
	return views
}

func (t *Transformer) clientCounterparty(ctx context.Context, booking *models.Booking) models.ClientView {
	view := models.ClientView{
		ID:       booking.ClientID,
		FullName: booking.FullName,
		Email:    booking.EmailOrPhone,
	}
	if view.ID == "" {
		view.ID = "unknown"
	}

	if booking.ClientID != "" {
		profile, err := t.store.ProfileByID(ctx, booking.ClientID)
		if err == nil {
			if profile.FullName != "" {
				view.FullName = profile.FullName
			}
			if profile.Email != "" {
				view.Email = profile.Email
			}
			return view
		}
		if !domain.IsNotFound(err) {
			t.logger.Debug().Err(err).Str("client_id", booking.ClientID).
				Msg("counterparty profile lookup failed")
		}
	}

	if view.FullName == "" {
		view.FullName = unknownClientName
	}
	if view.Email == "" {
		view.Email = unknownClientContact
	}
	return view
}
