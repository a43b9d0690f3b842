package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"glampbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Réservations"

var columnHeaders = []string{
	"Propriété", "Localisation", "Client", "Contact",
	"Arrivée", "Départ", "Voyageurs", "Prix total", "Statut", "Créée le",
}

// BookingSource produces the rows to export.
type BookingSource interface {
	ListBookings(ctx context.Context, role, actorID, status string, limit int) ([]models.BookingView, error)
}

// Exporter writes a host's booking list to an Excel workbook on disk.
type Exporter struct {
	source BookingSource
	path   string
	logger *zerolog.Logger
}

func NewExporter(source BookingSource, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{source: source, path: path, logger: logger}
}

// OwnerBookings exports the owner's bookings, optionally filtered by status,
// and returns the path of the written file.
func (e *Exporter) OwnerBookings(ctx context.Context, ownerID, status string, limit int) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.source.ListBookings(ctx, models.RoleOwner, ownerID, status, limit)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	e.writeHeaders(f)
	e.writeRows(f, bookings)

	_ = f.SetColWidth(sheetName, "A", "B", 25)
	_ = f.SetColWidth(sheetName, "C", "D", 22)
	_ = f.SetColWidth(sheetName, "E", "J", 14)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservations_%s_%s.xlsx", ownerID, time.Now().Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(bookings)).
		Msg("Excel file created")
	return filePath, nil
}

func (e *Exporter) writeHeaders(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range columnHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func (e *Exporter) writeRows(f *excelize.File, bookings []models.BookingView) {
	for i, booking := range bookings {
		row := i + 2
		values := []interface{}{
			booking.Property.Name,
			booking.Property.Location,
			booking.Client.FullName,
			booking.Client.Email,
			booking.CheckInDate.Format("02.01.2006"),
			booking.CheckOutDate.Format("02.01.2006"),
			booking.GuestCount,
			booking.TotalPrice,
			models.StatusLabel(booking.Status),
			booking.CreatedAt.Format("02.01.2006"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}
}
