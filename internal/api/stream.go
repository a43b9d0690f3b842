package api

import (
	"net/http"

	"glampbook/internal/models"

	"github.com/gin-gonic/gin"
)

type streamEvent struct {
	name string
	data interface{}
}

// streamBookings holds the connection open as a server-sent event stream.
// Each viewer gets a session on the synchronization engine; list
// replacements arrive as "bookings" events, poll-detected status changes as
// "notice" events. The session is torn down when the client disconnects.
func (s *Server) streamBookings(c *gin.Context) {
	if s.engine == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "streaming is not configured"})
		return
	}

	role, actorID := models.RoleClient, c.Query("client_id")
	if actorID == "" && c.Query("owner_id") != "" {
		role, actorID = models.RoleOwner, c.Query("owner_id")
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Status == "" {
		q.Status = models.StatusAll
	}

	// Buffered so a stalled client cannot block the session worker. A list
	// event dropped here is superseded by the next reload anyway.
	events := make(chan streamEvent, 16)
	onList := func(list []models.BookingView) {
		select {
		case events <- streamEvent{"bookings", gin.H{"data": list}}:
		default:
		}
	}
	onNotice := func(message string) {
		select {
		case events <- streamEvent{"notice", gin.H{"message": message}}:
		default:
		}
	}

	session, err := s.engine.Open(c.Request.Context(), role, actorID, q.Status, onList, onNotice)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer session.Stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("live", gin.H{"live": session.Live()})
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event := <-events:
			c.SSEvent(event.name, event.data)
			c.Writer.Flush()
		}
	}
}
