package api

import (
	"errors"
	"net/http"
	"path/filepath"

	"glampbook/internal/domain"
	"glampbook/internal/models"
	"glampbook/internal/service"

	"github.com/gin-gonic/gin"
)

type listQuery struct {
	Status string `form:"status" binding:"omitempty,booking_status"`
	Limit  int    `form:"limit" binding:"omitempty,gte=1,lte=200"`
}

func (s *Server) listClientBookings(c *gin.Context) {
	s.listBookings(c, models.RoleClient, c.Query("client_id"))
}

func (s *Server) listOwnerBookings(c *gin.Context) {
	s.listBookings(c, models.RoleOwner, c.Query("owner_id"))
}

func (s *Server) listBookings(c *gin.Context, role, actorID string) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Status == "" {
		q.Status = models.StatusAll
	}

	views, err := s.bookings.ListBookings(c.Request.Context(), role, actorID, q.Status, q.Limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) createBooking(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := s.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": view})
}

type statusUpdateRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

func (s *Server) updateBookingStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := s.bookings.SetBookingStatus(c.Request.Context(), req.ID, req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) deleteBooking(c *gin.Context) {
	if err := s.bookings.DeleteBookingRecord(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": c.Param("id")}})
}

func (s *Server) exportOwnerBookings(c *gin.Context) {
	if s.exporter == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "export is not configured"})
		return
	}

	ownerID := c.Query("owner_id")
	if ownerID == "" {
		s.fail(c, domain.ErrMissingActor)
		return
	}
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Status == "" {
		q.Status = models.StatusAll
	}

	path, err := s.exporter.OwnerBookings(c.Request.Context(), ownerID, q.Status, q.Limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// fail translates service errors into HTTP responses.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrMissingActor),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
