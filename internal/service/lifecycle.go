package service

import (
	"context"
	"fmt"

	"glampbook/internal/domain"
	"glampbook/internal/models"

	"github.com/rs/zerolog"
)

// Lifecycle validates and applies booking status changes and the terminal
// administrative delete. Every successful write lands on the change feed so
// subscribed dashboards reload.
//
// Only the status value is validated here; which transitions a viewer may
// trigger is decided by the dashboard buttons.
type Lifecycle struct {
	store  domain.Store
	feed   domain.ChangePublisher
	logger *zerolog.Logger
}

func NewLifecycle(store domain.Store, feed domain.ChangePublisher, logger *zerolog.Logger) *Lifecycle {
	return &Lifecycle{store: store, feed: feed, logger: logger}
}

// SetStatus applies newStatus and returns the updated record. Setting the
// status a booking already has is a successful no-op for the caller.
func (l *Lifecycle) SetStatus(ctx context.Context, bookingID, newStatus string) (*models.Booking, error) {
	if !models.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w (got %q)", domain.ErrInvalidStatus, newStatus)
	}

	booking, err := l.store.UpdateBookingStatus(ctx, bookingID, newStatus)
	if err != nil {
		return nil, err
	}

	l.logger.Info().Str("booking_id", bookingID).Str("status", newStatus).
		Msg("booking status updated")

	l.publish(domain.Change{
		Kind:       domain.ChangeUpdate,
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		PropertyID: booking.PropertyID,
		Status:     booking.Status,
	})
	return booking, nil
}

// Delete removes the record entirely. Available on any status.
func (l *Lifecycle) Delete(ctx context.Context, bookingID string) error {
	booking, err := l.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := l.store.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}

	l.logger.Info().Str("booking_id", bookingID).Msg("booking deleted")

	l.publish(domain.Change{
		Kind:       domain.ChangeDelete,
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		PropertyID: booking.PropertyID,
		Status:     booking.Status,
	})
	return nil
}

func (l *Lifecycle) publish(change domain.Change) {
	if l.feed != nil {
		l.feed.Publish(change)
	}
}
