package sync

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/events"
	"glampbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	mu    sync.Mutex
	calls int
	list  []models.BookingView
	err   error
	gate  chan struct{}
}

func (l *stubLister) ListBookings(ctx context.Context, role, actorID, status string, limit int) ([]models.BookingView, error) {
	l.mu.Lock()
	l.calls++
	list, err, gate := l.list, l.err, l.gate
	l.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	out := make([]models.BookingView, len(list))
	copy(out, list)
	return out, nil
}

func (l *stubLister) setList(list []models.BookingView) {
	l.mu.Lock()
	l.list = list
	l.mu.Unlock()
}

func (l *stubLister) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *stubLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type stubDirectory struct {
	ids []string
	err error
}

func (d *stubDirectory) PropertyIDsByOwner(context.Context, string) ([]string, error) {
	return d.ids, d.err
}

type recorder struct {
	mu      sync.Mutex
	lists   [][]models.BookingView
	notices []string
}

func (r *recorder) onList(list []models.BookingView) {
	r.mu.Lock()
	r.lists = append(r.lists, list)
	r.mu.Unlock()
}

func (r *recorder) onNotice(message string) {
	r.mu.Lock()
	r.notices = append(r.notices, message)
	r.mu.Unlock()
}

func (r *recorder) listCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists)
}

func (r *recorder) lastList() []models.BookingView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lists) == 0 {
		return nil
	}
	return r.lists[len(r.lists)-1]
}

func (r *recorder) allNotices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

func booking(id, status, propertyName string) models.BookingView {
	return models.BookingView{
		ID:     id,
		Status: status,
		Property: models.PropertyView{
			ID:   "p-" + id,
			Name: propertyName,
		},
	}
}

func newTestEngine(feed domain.ChangeFeed, lister Lister, dir PropertyDirectory, poll time.Duration) *Engine {
	logger := zerolog.New(io.Discard)
	return NewEngine(feed, lister, dir, poll, 50, &logger)
}

func TestSessionInitialLoad(t *testing.T) {
	lister := &stubLister{}
	lister.setList([]models.BookingView{booking("b-1", models.StatusPending, "Cabane")})
	engine := newTestEngine(events.NewFeed(), lister, nil, time.Hour)
	rec := &recorder{}

	session, err := engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, rec.onList, rec.onNotice)
	require.NoError(t, err)
	defer session.Stop()

	// Open performs the initial load synchronously.
	require.Equal(t, 1, rec.listCount())
	assert.Equal(t, "b-1", rec.lastList()[0].ID)
	assert.Equal(t, rec.lastList(), session.Bookings())
	assert.True(t, session.Live())
}

func TestSessionLiveReflectsPushChannel(t *testing.T) {
	lister := &stubLister{}
	lister.setList([]models.BookingView{})
	engine := newTestEngine(nil, lister, nil, time.Hour)

	session, err := engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, nil, nil)
	require.NoError(t, err)
	defer session.Stop()

	// No feed, no push channel: polling still works but the session is not live.
	assert.False(t, session.Live())
}

func TestSessionRejectsBadViewer(t *testing.T) {
	engine := newTestEngine(events.NewFeed(), &stubLister{}, nil, time.Hour)

	_, err := engine.Open(context.Background(), models.RoleClient, "", models.StatusAll, nil, nil)
	assert.ErrorIs(t, err, domain.ErrMissingActor)

	_, err = engine.Open(context.Background(), "admin", "u-1", models.StatusAll, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestSessionPushReload(t *testing.T) {
	feed := events.NewFeed()
	lister := &stubLister{}
	lister.setList([]models.BookingView{})
	engine := newTestEngine(feed, lister, nil, time.Hour)
	rec := &recorder{}

	session, err := engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, rec.onList, rec.onNotice)
	require.NoError(t, err)
	defer session.Stop()

	lister.setList([]models.BookingView{booking("b-1", models.StatusPending, "Cabane")})
	feed.Publish(domain.Change{Kind: domain.ChangeInsert, BookingID: "b-1", ClientID: "u-1"})

	require.Eventually(t, func() bool { return rec.listCount() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "b-1", rec.lastList()[0].ID)

	// Another client's change must not reach this session.
	before := rec.listCount()
	feed.Publish(domain.Change{Kind: domain.ChangeInsert, BookingID: "b-9", ClientID: "someone-else"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, rec.listCount())
}

func TestSessionOwnerScope(t *testing.T) {
	feed := events.NewFeed()
	lister := &stubLister{}
	lister.setList([]models.BookingView{})
	dir := &stubDirectory{ids: []string{"p-1", "p-2"}}
	engine := newTestEngine(feed, lister, dir, time.Hour)
	rec := &recorder{}

	session, err := engine.Open(context.Background(), models.RoleOwner, "o-1", models.StatusAll, rec.onList, rec.onNotice)
	require.NoError(t, err)
	defer session.Stop()

	initial := rec.listCount()

	feed.Publish(domain.Change{Kind: domain.ChangeUpdate, BookingID: "b-1", PropertyID: "p-2"})
	require.Eventually(t, func() bool { return rec.listCount() > initial }, time.Second, 5*time.Millisecond)

	after := rec.listCount()
	feed.Publish(domain.Change{Kind: domain.ChangeUpdate, BookingID: "b-2", PropertyID: "not-owned"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, rec.listCount())
}

func TestSessionOwnerScopeLookupFailure(t *testing.T) {
	dir := &stubDirectory{err: errors.New("boom")}
	engine := newTestEngine(events.NewFeed(), &stubLister{}, dir, time.Hour)

	_, err := engine.Open(context.Background(), models.RoleOwner, "o-1", models.StatusAll, nil, nil)
	assert.Error(t, err)
}

func TestSessionCoalescesBursts(t *testing.T) {
	lister := &stubLister{}
	gate := make(chan struct{})
	lister.gate = gate
	lister.setList([]models.BookingView{})
	engine := newTestEngine(events.NewFeed(), lister, nil, time.Hour)
	rec := &recorder{}

	var session *Session
	opened := make(chan struct{})
	go func() {
		var err error
		session, err = engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, rec.onList, rec.onNotice)
		assert.NoError(t, err)
		close(opened)
	}()

	// Let the initial load through.
	gate <- struct{}{}
	<-opened
	defer session.Stop()

	// Park the worker inside a reload, then pile up refresh requests.
	session.Refresh()
	require.Eventually(t, func() bool { return lister.callCount() == 2 }, time.Second, time.Millisecond)
	for i := 0; i < 10; i++ {
		session.Refresh()
	}
	gate <- struct{}{}
	gate <- struct{}{}

	require.Eventually(t, func() bool { return rec.listCount() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	// Initial load, the parked reload, and one coalesced follow-up.
	assert.Equal(t, 3, rec.listCount())
	assert.Equal(t, 3, lister.callCount())
}

func TestSessionPollNotices(t *testing.T) {
	lister := &stubLister{}
	lister.setList([]models.BookingView{booking("b-1", models.StatusPending, "Cabane du Lac")})
	engine := newTestEngine(events.NewFeed(), lister, nil, 20*time.Millisecond)
	rec := &recorder{}

	session, err := engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, rec.onList, rec.onNotice)
	require.NoError(t, err)
	defer session.Stop()

	lister.setList([]models.BookingView{booking("b-1", models.StatusConfirmed, "Cabane du Lac")})

	require.Eventually(t, func() bool { return len(rec.allNotices()) >= 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Votre réservation pour Cabane du Lac est maintenant confirmée", rec.allNotices()[0])
}

func TestSessionPollNoNoticeWithoutChange(t *testing.T) {
	lister := &stubLister{}
	lister.setList([]models.BookingView{booking("b-1", models.StatusPending, "Cabane")})
	engine := newTestEngine(events.NewFeed(), lister, nil, 15*time.Millisecond)
	rec := &recorder{}

	session, err := engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, rec.onList, rec.onNotice)
	require.NoError(t, err)
	defer session.Stop()

	require.Eventually(t, func() bool { return rec.listCount() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, rec.allNotices())
}

func TestSessionKeepsListOnReloadError(t *testing.T) {
	lister := &stubLister{}
	lister.setList([]models.BookingView{booking("b-1", models.StatusPending, "Cabane")})
	engine := newTestEngine(events.NewFeed(), lister, nil, 15*time.Millisecond)
	rec := &recorder{}

	session, err := engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, rec.onList, rec.onNotice)
	require.NoError(t, err)
	defer session.Stop()

	lister.setErr(errors.New("storage down"))
	start := lister.callCount()
	require.Eventually(t, func() bool { return lister.callCount() > start+1 }, time.Second, 5*time.Millisecond)

	// Reloads run one at a time, so every call counted after setErr failed
	// and the viewer keeps the list they already have.
	delivered := rec.listCount()
	next := lister.callCount()
	require.Eventually(t, func() bool { return lister.callCount() > next }, time.Second, 5*time.Millisecond)
	assert.Equal(t, delivered, rec.listCount())
	assert.Equal(t, "b-1", session.Bookings()[0].ID)
}

func TestSessionStopDiscardsInFlightReload(t *testing.T) {
	lister := &stubLister{}
	gate := make(chan struct{})
	lister.gate = gate
	lister.setList([]models.BookingView{})
	engine := newTestEngine(events.NewFeed(), lister, nil, time.Hour)
	rec := &recorder{}

	var session *Session
	opened := make(chan struct{})
	go func() {
		var err error
		session, err = engine.Open(context.Background(), models.RoleClient, "u-1", models.StatusAll, rec.onList, rec.onNotice)
		assert.NoError(t, err)
		close(opened)
	}()
	gate <- struct{}{}
	<-opened

	// Park the worker mid-reload, then tear the session down.
	session.Refresh()
	require.Eventually(t, func() bool { return lister.callCount() == 2 }, time.Second, time.Millisecond)
	stopped := make(chan struct{})
	go func() {
		session.Stop()
		close(stopped)
	}()

	lister.setList([]models.BookingView{booking("late", models.StatusPending, "Late")})
	gate <- struct{}{}
	<-stopped

	// The in-flight result arrived after teardown and was dropped.
	assert.Equal(t, 1, rec.listCount())
	assert.False(t, session.Live())
}
