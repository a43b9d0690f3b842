package resolver

import (
	"context"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/metrics"
	"glampbook/internal/models"

	"github.com/rs/zerolog"
)

// Winning source labels, also used as metric labels.
const (
	SourceSnapshot    = "snapshot"
	SourceJoined      = "joined"
	SourceFetched     = "fetched"
	SourcePlaceholder = "placeholder"
)

// Sentinel identifiers on resolved views that do not point at a live listing.
const (
	StoredID      = "stored"
	PlaceholderID = "unknown"
)

const (
	unknownName         = "Propriété inconnue"
	unknownLocation     = "Localisation inconnue"
	unspecifiedName     = "Nom non spécifié"
	unspecifiedLocation = "Localisation non spécifiée"
)

// PropertyFetcher is the single lookup the resolver may issue.
type PropertyFetcher interface {
	PropertyByID(ctx context.Context, id string) (*models.Property, error)
}

// Resolver turns a booking into one display-ready property view. Candidate
// sources are tried in priority order: the stored snapshot, the live property
// joined by the query, a best-effort direct fetch, and finally a placeholder.
// The stored snapshot outranks everything because it is the record of what
// the client actually booked.
type Resolver struct {
	properties   PropertyFetcher
	cache        domain.PropertyCache
	fetchTimeout time.Duration
	logger       *zerolog.Logger
}

// New builds a resolver. cache may be nil, in which case every fallback fetch
// goes to storage.
func New(properties PropertyFetcher, cache domain.PropertyCache, fetchTimeout time.Duration, logger *zerolog.Logger) *Resolver {
	if fetchTimeout <= 0 {
		fetchTimeout = 3 * time.Second
	}
	return &Resolver{
		properties:   properties,
		cache:        cache,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Resolve never fails. The first satisfied source wins outright; sources are
// never merged. Exhausting all of them degrades to the placeholder.
func (r *Resolver) Resolve(ctx context.Context, booking *models.Booking) models.PropertyView {
	sources := []struct {
		name string
		try  func(context.Context, *models.Booking) (models.PropertyView, bool)
	}{
		{SourceSnapshot, r.fromSnapshot},
		{SourceJoined, r.fromJoined},
		{SourceFetched, r.fromFetch},
	}

	for _, source := range sources {
		if view, ok := source.try(ctx, booking); ok {
			metrics.IncResolverSource(source.name)
			return view
		}
	}

	metrics.IncResolverSource(SourcePlaceholder)
	return placeholder(booking)
}

// fromSnapshot uses the display snapshot captured at submission time. It only
// wins when both name and location were stored; price, guest cap and images
// ride along as whatever was captured.
func (r *Resolver) fromSnapshot(_ context.Context, booking *models.Booking) (models.PropertyView, bool) {
	if booking.PropertyName == "" || booking.PropertyLocation == "" {
		return models.PropertyView{}, false
	}
	return models.PropertyView{
		ID:            StoredID,
		Name:          booking.PropertyName,
		Location:      booking.PropertyLocation,
		Images:        orEmpty(booking.PropertyImages),
		PricePerNight: booking.PropertyPricePerNight,
		MaxGuests:     booking.PropertyMaxGuests,
	}, true
}

func (r *Resolver) fromJoined(_ context.Context, booking *models.Booking) (models.PropertyView, bool) {
	joined := booking.JoinedProperty
	if joined == nil || joined.ID == "" || joined.Name == "" {
		return models.PropertyView{}, false
	}
	return liveView(joined), true
}

// fromFetch issues one best-effort lookup of the referenced listing, behind a
// short timeout so a slow storage call cannot stall list rendering. Any
// failure falls through to the placeholder.
func (r *Resolver) fromFetch(ctx context.Context, booking *models.Booking) (models.PropertyView, bool) {
	if booking.PropertyID == "" || r.properties == nil {
		return models.PropertyView{}, false
	}

	if property := r.cacheGet(ctx, booking.PropertyID); property != nil {
		if property.Name == "" {
			return models.PropertyView{}, false
		}
		return liveView(property), true
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	property, err := r.properties.PropertyByID(fetchCtx, booking.PropertyID)
	if err != nil {
		if !domain.IsNotFound(err) {
			r.logger.Debug().Err(err).Str("property_id", booking.PropertyID).
				Msg("fallback property fetch failed")
		}
		return models.PropertyView{}, false
	}
	if property.Name == "" {
		return models.PropertyView{}, false
	}

	r.cacheSet(ctx, property)
	return liveView(property), true
}

func (r *Resolver) cacheGet(ctx context.Context, id string) *models.Property {
	if r.cache == nil {
		return nil
	}
	property, err := r.cache.Get(ctx, id)
	if err != nil {
		r.logger.Debug().Err(err).Msg("property cache read failed")
		return nil
	}
	return property
}

func (r *Resolver) cacheSet(ctx context.Context, property *models.Property) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, property); err != nil {
		r.logger.Debug().Err(err).Msg("property cache write failed")
	}
}

func liveView(property *models.Property) models.PropertyView {
	location := property.Location
	if location == "" {
		location = unknownLocation
	}
	return models.PropertyView{
		ID:            property.ID,
		Name:          property.Name,
		Location:      location,
		Images:        orEmpty(property.Images),
		PricePerNight: property.PricePerNight,
		MaxGuests:     property.MaxGuests,
	}
}

// placeholder keeps a partial stored snapshot visible: a booking that stored
// only a name or only a location shows that field with the sibling marked
// unspecified, under the "stored" sentinel. A booking with no snapshot at all
// gets the fully unknown placeholder.
func placeholder(booking *models.Booking) models.PropertyView {
	if booking.PropertyName != "" || booking.PropertyLocation != "" {
		name := booking.PropertyName
		if name == "" {
			name = unspecifiedName
		}
		location := booking.PropertyLocation
		if location == "" {
			location = unspecifiedLocation
		}
		return models.PropertyView{
			ID:            StoredID,
			Name:          name,
			Location:      location,
			Images:        orEmpty(booking.PropertyImages),
			PricePerNight: booking.PropertyPricePerNight,
			MaxGuests:     booking.PropertyMaxGuests,
		}
	}
	return models.PropertyView{
		ID:       PlaceholderID,
		Name:     unknownName,
		Location: unknownLocation,
		Images:   []string{},
	}
}

func orEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
