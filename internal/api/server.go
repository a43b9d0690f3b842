package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"glampbook/internal/config"
	"glampbook/internal/metrics"
	"glampbook/internal/models"
	"glampbook/internal/service"
	"glampbook/internal/sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// BookingAPI is the service surface the HTTP layer sits on.
type BookingAPI interface {
	ListBookings(ctx context.Context, role, actorID, status string, limit int) ([]models.BookingView, error)
	CreateBooking(ctx context.Context, req service.CreateBookingRequest) (models.BookingView, error)
	SetBookingStatus(ctx context.Context, bookingID, status string) (models.BookingView, error)
	DeleteBookingRecord(ctx context.Context, bookingID string) error
}

// BookingExporter writes an owner's bookings to a spreadsheet on disk.
type BookingExporter interface {
	OwnerBookings(ctx context.Context, ownerID, status string, limit int) (string, error)
}

// Server is the REST front for the booking core.
type Server struct {
	bookings BookingAPI
	exporter BookingExporter
	engine   *sync.Engine
	cfg      *config.APIConfig
	logger   *zerolog.Logger
	limiter  *clientLimiter
	http     *http.Server
}

func NewServer(bookings BookingAPI, exporter BookingExporter, engine *sync.Engine, cfg *config.APIConfig, logger *zerolog.Logger) *Server {
	return &Server{
		bookings: bookings,
		exporter: exporter,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
		limiter:  newClientLimiter(cfg),
	}
}

// registerValidators installs the booking_status rule used by query bindings:
// the four lifecycle values plus the "all" sentinel.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == models.StatusAll || models.ValidStatus(value)
		})
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(s.rateLimitMiddleware())
	r.Use(s.metricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/bookings/client", s.listClientBookings)
		v1.GET("/bookings/owner", s.listOwnerBookings)
		v1.GET("/bookings/stream", s.streamBookings)
		v1.GET("/bookings/owner/export", s.exportOwnerBookings)
		v1.POST("/bookings", s.createBooking)
		v1.PATCH("/bookings", s.updateBookingStatus)
		v1.DELETE("/bookings/:id", s.deleteBooking)
	}

	return r
}

// Start runs the HTTP server until ctx is cancelled, then drains it.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server starting")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origins := s.cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	})
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.RateLimit.RPS > 0 && !s.limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if endpoint := c.FullPath(); endpoint != "" {
			metrics.IncHTTP(endpoint)
		}
	}
}
