package models

import "time"

// Booking is one reservation request. The Property* fields are the display
// snapshot captured when the client submitted the form; they are written once
// and never touched again, even if the listing is edited or deleted.
type Booking struct {
	ID              string    `json:"id"`
	PropertyID      string    `json:"property_id"`
	ClientID        string    `json:"client_id"`
	CheckInDate     time.Time `json:"check_in_date"`
	CheckOutDate    time.Time `json:"check_out_date"`
	GuestCount      int       `json:"guest_count"`
	TotalPrice      float64   `json:"total_price"`
	Status          string    `json:"status"` // pending, confirmed, cancelled, completed
	SpecialRequests string    `json:"special_requests"`
	FullName        string    `json:"full_name"`
	EmailOrPhone    string    `json:"email_or_phone"`
	TravelType      string    `json:"travel_type"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	PropertyName          string   `json:"property_name"`
	PropertyLocation      string   `json:"property_location"`
	PropertyPricePerNight float64  `json:"property_price_per_night"`
	PropertyMaxGuests     int      `json:"property_max_guests"`
	PropertyImages        []string `json:"property_images"`

	// JoinedProperty holds the live listing when the query fetched it
	// alongside the booking. Nil otherwise. Not persisted.
	JoinedProperty *Property `json:"-"`
}
