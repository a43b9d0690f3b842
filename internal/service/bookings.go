package service

import (
	"context"
	"fmt"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/models"
	"glampbook/internal/resolver"

	"github.com/rs/zerolog"
)

// Bookings is the surface dashboards and route handlers consume: role-scoped
// listing, status changes, deletion and creation, all returning view models.
type Bookings struct {
	query     *QueryService
	transform *Transformer
	lifecycle *Lifecycle
	store     domain.Store
	logger    *zerolog.Logger
}

func NewBookings(store domain.Store, feed domain.ChangePublisher, res *resolver.Resolver, logger *zerolog.Logger) *Bookings {
	return &Bookings{
		query:     NewQueryService(store, logger),
		transform: NewTransformer(store, res, logger),
		lifecycle: NewLifecycle(store, feed, logger),
		store:     store,
		logger:    logger,
	}
}

// ListBookings returns the actor's bookings as view models, newest first.
func (b *Bookings) ListBookings(ctx context.Context, role, actorID, status string, limit int) ([]models.BookingView, error) {
	bookings, err := b.query.ListBookings(ctx, role, actorID, status, limit)
	if err != nil {
		return nil, err
	}
	return b.transform.ToViews(ctx, bookings, role), nil
}

// SetBookingStatus applies the status change and returns the updated view.
func (b *Bookings) SetBookingStatus(ctx context.Context, bookingID, status string) (models.BookingView, error) {
	booking, err := b.lifecycle.SetStatus(ctx, bookingID, status)
	if err != nil {
		return models.BookingView{}, err
	}
	return b.transform.ToView(ctx, booking, models.RoleOwner), nil
}

// DeleteBookingRecord removes the booking entirely.
func (b *Bookings) DeleteBookingRecord(ctx context.Context, bookingID string) error {
	return b.lifecycle.Delete(ctx, bookingID)
}

// CreateBookingRequest is a booking submission. The property display snapshot
// is captured server-side from the live listing at this moment and never
// updated afterwards.
type CreateBookingRequest struct {
	PropertyID      string  `json:"property_id" binding:"required"`
	ClientID        string  `json:"client_id" binding:"required"`
	CheckInDate     string  `json:"check_in_date" binding:"required"`
	CheckOutDate    string  `json:"check_out_date" binding:"required"`
	GuestCount      int     `json:"guest_count" binding:"required,gte=1"`
	TotalPrice      float64 `json:"total_price" binding:"gte=0"`
	SpecialRequests string  `json:"special_requests"`
	FullName        string  `json:"full_name" binding:"required"`
	EmailOrPhone    string  `json:"email_or_phone" binding:"required"`
	TravelType      string  `json:"travel_type"`
}

// CreateBooking validates the submission, snapshots the listing and stores
// the booking in pending status.
func (b *Bookings) CreateBooking(ctx context.Context, req CreateBookingRequest) (models.BookingView, error) {
	checkIn, checkOut, err := parseStayDates(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return models.BookingView{}, err
	}
	if req.GuestCount < 1 {
		return models.BookingView{}, fmt.Errorf("%w: guest count must be positive", domain.ErrValidation)
	}
	if req.TotalPrice < 0 {
		return models.BookingView{}, fmt.Errorf("%w: total price cannot be negative", domain.ErrValidation)
	}

	property, err := b.store.PropertyByID(ctx, req.PropertyID)
	if err != nil {
		return models.BookingView{}, err
	}

	booking := &models.Booking{
		PropertyID:      req.PropertyID,
		ClientID:        req.ClientID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		GuestCount:      req.GuestCount,
		TotalPrice:      req.TotalPrice,
		Status:          models.StatusPending,
		SpecialRequests: req.SpecialRequests,
		FullName:        req.FullName,
		EmailOrPhone:    req.EmailOrPhone,
		TravelType:      req.TravelType,

		PropertyName:          property.Name,
		PropertyLocation:      property.Location,
		PropertyPricePerNight: property.PricePerNight,
		PropertyMaxGuests:     property.MaxGuests,
		PropertyImages:        property.Images,
	}

	if err := b.store.CreateBooking(ctx, booking); err != nil {
		return models.BookingView{}, err
	}

	b.logger.Info().Str("booking_id", booking.ID).Str("property_id", booking.PropertyID).
		Msg("booking created")

	b.lifecycle.publish(domain.Change{
		Kind:       domain.ChangeInsert,
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		PropertyID: booking.PropertyID,
		Status:     booking.Status,
	})

	return b.transform.ToView(ctx, booking, models.RoleClient), nil
}

func parseStayDates(checkIn, checkOut string) (start, end time.Time, err error) {
	const layout = "2006-01-02"
	start, err = time.Parse(layout, checkIn)
	if err != nil {
		return start, end, fmt.Errorf("%w: bad check-in date %q", domain.ErrValidation, checkIn)
	}
	end, err = time.Parse(layout, checkOut)
	if err != nil {
		return start, end, fmt.Errorf("%w: bad check-out date %q", domain.ErrValidation, checkOut)
	}
	if !end.After(start) {
		return start, end, fmt.Errorf("%w: check-out must be after check-in", domain.ErrValidation)
	}
	return start, end, nil
}
