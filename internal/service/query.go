package service

import (
	"context"
	"fmt"

	"glampbook/internal/domain"
	"glampbook/internal/models"

	"github.com/rs/zerolog"
)

// QueryService builds role-scoped booking queries. Guests see their own
// bookings; hosts see the bookings on listings they own.
type QueryService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewQueryService(store domain.Store, logger *zerolog.Logger) *QueryService {
	return &QueryService{store: store, logger: logger}
}

// ListBookings returns raw booking rows for the actor, newest first. Any
// storage failure aborts the whole call; no partial results.
func (s *QueryService) ListBookings(ctx context.Context, role, actorID, status string, limit int) ([]*models.Booking, error) {
	if actorID == "" {
		return nil, domain.ErrMissingActor
	}
	if limit <= 0 {
		limit = models.DefaultListLimit
	}

	switch role {
	case models.RoleClient:
		return s.store.BookingsByClient(ctx, actorID, status, limit)

	case models.RoleOwner:
		propertyIDs, err := s.store.PropertyIDsByOwner(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve owner properties: %w", err)
		}
		// An owner without listings has no bookings to look for.
		if len(propertyIDs) == 0 {
			return []*models.Booking{}, nil
		}
		return s.store.BookingsByPropertyIDs(ctx, propertyIDs, status, limit)

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
}
