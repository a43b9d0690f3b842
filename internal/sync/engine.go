package sync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/metrics"
	"glampbook/internal/models"

	"github.com/rs/zerolog"
)

// Reload channel labels, also used as metric labels.
const (
	channelPush = "push"
	channelPoll = "poll"
)

// Lister produces the viewer's current booking list. In production this is
// the bookings facade.
type Lister interface {
	ListBookings(ctx context.Context, role, actorID, status string, limit int) ([]models.BookingView, error)
}

// PropertyDirectory resolves which listings an owner session watches.
type PropertyDirectory interface {
	PropertyIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// Engine keeps dashboard sessions current. Each session combines a push
// subscription on the change feed with a poll ticker; both channels funnel
// into a single reload loop per session, so bursts collapse into one list
// replacement.
type Engine struct {
	feed         domain.ChangeFeed
	lister       Lister
	properties   PropertyDirectory
	pollInterval time.Duration
	listLimit    int
	logger       *zerolog.Logger
}

func NewEngine(feed domain.ChangeFeed, lister Lister, properties PropertyDirectory, pollInterval time.Duration, listLimit int, logger *zerolog.Logger) *Engine {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if listLimit <= 0 {
		listLimit = models.DefaultListLimit
	}
	return &Engine{
		feed:         feed,
		lister:       lister,
		properties:   properties,
		pollInterval: pollInterval,
		listLimit:    listLimit,
		logger:       logger,
	}
}

// Session is one live dashboard view. OnList receives every accepted list
// replacement; OnNotice receives the French status-change notices produced by
// poll reconciliation. Both callbacks run on the session worker goroutine.
type Session struct {
	engine  *Engine
	role    string
	actorID string
	status  string

	onList   func([]models.BookingView)
	onNotice func(string)

	mu       sync.Mutex
	bookings []models.BookingView

	live        atomic.Bool
	kick        chan struct{}
	cancel      context.CancelFunc
	done        chan struct{}
	unsubscribe func()
	stopOnce    sync.Once
}

// Open starts a session for the viewer and performs the initial load before
// returning. Stop the session when the dashboard goes away; callbacks never
// fire after Stop returns.
func (e *Engine) Open(ctx context.Context, role, actorID, status string, onList func([]models.BookingView), onNotice func(string)) (*Session, error) {
	if actorID == "" {
		return nil, domain.ErrMissingActor
	}

	filter, err := e.sessionFilter(ctx, role, actorID)
	if err != nil {
		return nil, err
	}

	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		engine:   e,
		role:     role,
		actorID:  actorID,
		status:   status,
		onList:   onList,
		onNotice: onNotice,
		kick:     make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if e.feed != nil {
		unsubscribe, err := e.feed.Subscribe(filter, func(domain.Change) { s.requestReload() })
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to subscribe session: %w", err)
		}
		s.unsubscribe = unsubscribe
	}

	// Live means the push channel is attached. A session without a feed
	// still polls, but the connection indicator must not claim push health.
	s.live.Store(s.unsubscribe != nil)

	s.reload(sessionCtx, channelPush)
	go s.run(sessionCtx)
	return s, nil
}

// sessionFilter scopes push delivery to the viewer: clients see their own
// bookings, owners see bookings on listings they held when the session
// opened. Listings added later are still covered by the poll channel.
func (e *Engine) sessionFilter(ctx context.Context, role, actorID string) (func(domain.Change) bool, error) {
	switch role {
	case models.RoleClient:
		return func(c domain.Change) bool { return c.ClientID == actorID }, nil

	case models.RoleOwner:
		if e.properties == nil {
			return func(domain.Change) bool { return true }, nil
		}
		ids, err := e.properties.PropertyIDsByOwner(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to scope owner session: %w", err)
		}
		owned := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			owned[id] = struct{}{}
		}
		return func(c domain.Change) bool {
			_, ok := owned[c.PropertyID]
			return ok
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
}

// Live reports whether the push channel is attached. The poll channel runs
// regardless; this only drives the connection indicator.
func (s *Session) Live() bool {
	return s.live.Load()
}

// Bookings returns the last accepted list.
func (s *Session) Bookings() []models.BookingView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BookingView, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// Refresh schedules a reload, collapsing with any already pending one.
func (s *Session) Refresh() {
	s.requestReload()
}

// Stop tears the session down and waits for the worker to exit, so no
// callback fires afterwards. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.live.Store(false)
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.cancel()
		<-s.done
	})
}

func (s *Session) requestReload() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.engine.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.kick:
			s.reload(ctx, channelPush)

		case <-ticker.C:
			// A poll reload satisfies any push that queued up meanwhile.
			select {
			case <-s.kick:
			default:
			}
			s.reload(ctx, channelPoll)
		}
	}
}

// reload fetches the current list and replaces the session's copy. A fetch
// error keeps the previous list on screen. Poll reloads additionally diff
// statuses against the previous list and emit notices.
func (s *Session) reload(ctx context.Context, channel string) {
	bookings, err := s.engine.lister.ListBookings(ctx, s.role, s.actorID, s.status, s.engine.listLimit)
	if err != nil {
		if ctx.Err() == nil {
			s.engine.logger.Warn().Err(err).Str("channel", channel).Str("actor_id", s.actorID).
				Msg("session reload failed")
		}
		return
	}
	// The session may have been torn down while the fetch was in flight.
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	previous := s.bookings
	s.bookings = bookings
	s.mu.Unlock()

	metrics.IncSyncReload(channel)

	if channel == channelPoll {
		s.emitNotices(previous, bookings)
	}
	if s.onList != nil {
		s.onList(bookings)
	}
}

func (s *Session) emitNotices(previous, current []models.BookingView) {
	if s.onNotice == nil || len(previous) == 0 {
		return
	}
	before := make(map[string]models.BookingView, len(previous))
	for _, booking := range previous {
		before[booking.ID] = booking
	}
	for _, booking := range current {
		old, seen := before[booking.ID]
		if !seen || old.Status == booking.Status {
			continue
		}
		metrics.IncSyncNotice()
		s.onNotice(fmt.Sprintf("Votre réservation pour %s est maintenant %s",
			booking.Property.Name, models.StatusLabel(booking.Status)))
	}
}
