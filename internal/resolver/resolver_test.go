package resolver

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/models"
	"glampbook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	properties map[string]*models.Property
	err        error
	calls      int
}

func (f *fakeFetcher) PropertyByID(ctx context.Context, id string) (*models.Property, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.properties[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func newResolver(fetcher PropertyFetcher, cache domain.PropertyCache) *Resolver {
	logger := zerolog.New(io.Discard)
	return New(fetcher, cache, time.Second, &logger)
}

func TestStoredSnapshotWins(t *testing.T) {
	r := newResolver(&fakeFetcher{}, nil)

	booking := &models.Booking{
		PropertyID:            "p-1",
		PropertyName:          "Yurt X",
		PropertyLocation:      "Valley",
		PropertyPricePerNight: 95,
		PropertyMaxGuests:     3,
		// A joined live property with a different name must not leak through.
		JoinedProperty: &models.Property{ID: "p-1", Name: "Yurt Y", Location: "Hilltop"},
	}

	view := r.Resolve(context.Background(), booking)
	assert.Equal(t, StoredID, view.ID)
	assert.Equal(t, "Yurt X", view.Name)
	assert.Equal(t, "Valley", view.Location)
	assert.Equal(t, 95.0, view.PricePerNight)
	assert.Equal(t, 3, view.MaxGuests)
	assert.Equal(t, []string{}, view.Images)
}

func TestJoinedPropertyUsedWhenSnapshotEmpty(t *testing.T) {
	r := newResolver(&fakeFetcher{}, nil)

	booking := &models.Booking{
		PropertyID: "p-1",
		JoinedProperty: &models.Property{
			ID:            "p-1",
			Name:          "Dôme Étoilé",
			PricePerNight: 150,
		},
	}

	view := r.Resolve(context.Background(), booking)
	assert.Equal(t, "p-1", view.ID)
	assert.Equal(t, "Dôme Étoilé", view.Name)
	assert.Equal(t, "Localisation inconnue", view.Location)
	assert.Equal(t, []string{}, view.Images)
	assert.Equal(t, 150.0, view.PricePerNight)
}

func TestJoinedPropertyWithoutNameIsSkipped(t *testing.T) {
	fetcher := &fakeFetcher{properties: map[string]*models.Property{}}
	r := newResolver(fetcher, nil)

	booking := &models.Booking{
		PropertyID:     "p-1",
		JoinedProperty: &models.Property{ID: "p-1"},
	}

	view := r.Resolve(context.Background(), booking)
	assert.Equal(t, PlaceholderID, view.ID)
	// The direct fetch was still attempted before the placeholder.
	assert.Equal(t, 1, fetcher.calls)
}

func TestFallbackFetch(t *testing.T) {
	fetcher := &fakeFetcher{properties: map[string]*models.Property{
		"P1": {ID: "P1", Name: "Cabin A", Location: "Forest"},
	}}
	r := newResolver(fetcher, nil)

	booking := &models.Booking{PropertyID: "P1"}

	view := r.Resolve(context.Background(), booking)
	assert.Equal(t, "Cabin A", view.Name)
	assert.Equal(t, "Forest", view.Location)
	assert.Equal(t, 0.0, view.PricePerNight)
}

func TestFallbackFetchFailureDegradesToPlaceholder(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("network down")}
	r := newResolver(fetcher, nil)

	booking := &models.Booking{PropertyID: "p-1"}

	view := r.Resolve(context.Background(), booking)
	assert.Equal(t, PlaceholderID, view.ID)
	assert.Equal(t, "Propriété inconnue", view.Name)
	assert.Equal(t, "Localisation inconnue", view.Location)
	assert.Equal(t, []string{}, view.Images)
	assert.Zero(t, view.PricePerNight)
	assert.Zero(t, view.MaxGuests)
}

func TestPlaceholderIsDeterministic(t *testing.T) {
	r := newResolver(&fakeFetcher{}, nil)
	booking := &models.Booking{}

	first := r.Resolve(context.Background(), booking)
	second := r.Resolve(context.Background(), booking)
	assert.Equal(t, first, second)
	assert.Equal(t, PlaceholderID, first.ID)
}

func TestPartialSnapshotKeepsStoredField(t *testing.T) {
	r := newResolver(&fakeFetcher{}, nil)

	booking := &models.Booking{PropertyName: "Roulotte des Prés"}

	view := r.Resolve(context.Background(), booking)
	assert.Equal(t, StoredID, view.ID)
	assert.Equal(t, "Roulotte des Prés", view.Name)
	assert.Equal(t, "Localisation non spécifiée", view.Location)
}

func TestFallbackFetchUsesCache(t *testing.T) {
	fetcher := &fakeFetcher{properties: map[string]*models.Property{
		"p-1": {ID: "p-1", Name: "Bulle Transparente", Location: "Pyrénées"},
	}}
	cache := repository.NewMemoryPropertyCache(time.Minute)
	r := newResolver(fetcher, cache)

	booking := &models.Booking{PropertyID: "p-1"}

	first := r.Resolve(context.Background(), booking)
	second := r.Resolve(context.Background(), booking)

	assert.Equal(t, first, second)
	// Second resolution is served from the cache.
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolveHonorsFetchTimeout(t *testing.T) {
	logger := zerolog.New(io.Discard)
	slow := &slowFetcher{delay: 200 * time.Millisecond}
	r := New(slow, nil, 10*time.Millisecond, &logger)

	booking := &models.Booking{PropertyID: "p-1"}

	start := time.Now()
	view := r.Resolve(context.Background(), booking)
	require.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, PlaceholderID, view.ID)
}

type slowFetcher struct {
	delay time.Duration
}

func (s *slowFetcher) PropertyByID(ctx context.Context, id string) (*models.Property, error) {
	select {
	case <-time.After(s.delay):
		return &models.Property{ID: id, Name: "late"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
