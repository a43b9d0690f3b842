package models

import "time"

// PropertyView is the resolved, display-ready property attached to a booking
// view. It is recomputed on every read, never persisted.
type PropertyView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Images        []string `json:"images"`
	PricePerNight float64  `json:"price_per_night"`
	MaxGuests     int      `json:"max_guests"`
}

// ClientView is the counterparty block on a booking view.
type ClientView struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// BookingView is the shape dashboards render and route handlers serialize.
type BookingView struct {
	ID              string       `json:"id"`
	CheckInDate     time.Time    `json:"check_in_date"`
	CheckOutDate    time.Time    `json:"check_out_date"`
	TotalPrice      float64      `json:"total_price"`
	Status          string       `json:"status"`
	GuestCount      int          `json:"guest_count"`
	SpecialRequests string       `json:"special_requests"`
	FullName        string       `json:"full_name"`
	EmailOrPhone    string       `json:"email_or_phone"`
	TravelType      string       `json:"travel_type"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Property        PropertyView `json:"property"`
	Client          ClientView   `json:"client"`
}
