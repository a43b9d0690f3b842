package models

import "time"

// Property is a listing owned by a host. It may be edited or deleted at any
// time, independently of the bookings that reference it.
type Property struct {
	ID            string    `json:"id" yaml:"id"`
	OwnerID       string    `json:"owner_id" yaml:"owner_id"`
	Name          string    `json:"name" yaml:"name"`
	Location      string    `json:"location" yaml:"location"`
	PricePerNight float64   `json:"price_per_night" yaml:"price_per_night"`
	MaxGuests     int       `json:"max_guests" yaml:"max_guests"`
	Images        []string  `json:"images" yaml:"images"`
	Category      string    `json:"category" yaml:"category"`
	Published     bool      `json:"published" yaml:"published"`
	Available     bool      `json:"available" yaml:"available"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}

// Profile is the minimal identity record looked up for whichever party is not
// the current viewer.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
