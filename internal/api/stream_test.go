package api

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"glampbook/internal/config"
	"glampbook/internal/domain"
	"glampbook/internal/events"
	"glampbook/internal/models"
	"glampbook/internal/sync"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStreamServer(bookings BookingAPI, feed *events.Feed) *Server {
	logger := zerolog.New(io.Discard)
	engine := sync.NewEngine(feed, bookings, nil, time.Hour, 50, &logger)
	return NewServer(bookings, nil, engine, &config.APIConfig{}, &logger)
}

func TestStreamBookingsNotConfigured(t *testing.T) {
	s := newTestServer(new(mockBookingAPI))
	w := doRequest(s, http.MethodGet, "/api/v1/bookings/stream?client_id=u-1", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestStreamBookingsMissingActor(t *testing.T) {
	bookings := new(mockBookingAPI)
	s := newStreamServer(bookings, events.NewFeed())

	w := doRequest(s, http.MethodGet, "/api/v1/bookings/stream", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamBookingsDeliversEvents(t *testing.T) {
	bookings := new(mockBookingAPI)
	feed := events.NewFeed()
	s := newStreamServer(bookings, feed)

	bookings.On("ListBookings", mock.Anything, models.RoleClient, "u-1", models.StatusAll, 50).
		Return([]models.BookingView{{ID: "b-1", Status: models.StatusPending}}, nil)

	server := httptest.NewServer(s.Router())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/bookings/stream?client_id=u-1", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var sawLive, sawList bool
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "event:live") || strings.Contains(line, "event: live") {
			sawLive = true
		}
		if strings.Contains(line, "b-1") {
			sawList = true
			break
		}
	}
	assert.True(t, sawLive)
	assert.True(t, sawList)
}

func TestStreamBookingsPushesChanges(t *testing.T) {
	bookings := new(mockBookingAPI)
	feed := events.NewFeed()
	s := newStreamServer(bookings, feed)

	bookings.On("ListBookings", mock.Anything, models.RoleClient, "u-1", models.StatusAll, 50).
		Return([]models.BookingView{{ID: "b-1", Status: models.StatusPending}}, nil).Once()
	bookings.On("ListBookings", mock.Anything, models.RoleClient, "u-1", models.StatusAll, 50).
		Return([]models.BookingView{{ID: "b-1", Status: models.StatusConfirmed}}, nil)

	server := httptest.NewServer(s.Router())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/bookings/stream?client_id=u-1", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Wait for the push subscription before publishing the change.
	require.Eventually(t, func() bool { return feed.SubscriberCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	feed.Publish(domain.Change{Kind: domain.ChangeUpdate, BookingID: "b-1", ClientID: "u-1", Status: models.StatusConfirmed})

	var sawUpdate bool
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), models.StatusConfirmed) {
			sawUpdate = true
			break
		}
	}
	assert.True(t, sawUpdate)
}
