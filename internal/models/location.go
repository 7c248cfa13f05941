package models

import "time"

// DefaultLocationRadius is the geofence radius in meters applied when none is given.
const DefaultLocationRadius = 500.0

// Location is a named point with a circular geofence around it.
type Location struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Name       string    `json:"name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Radius     float64   `json:"radius"`
	CategoryID *int64    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewLocation is the payload used to create a location.
type NewLocation struct {
	Name       string   `json:"name" validate:"required,max=100"`
	Latitude   *float64 `json:"latitude" validate:"required"`
	Longitude  *float64 `json:"longitude" validate:"required"`
	Radius     *float64 `json:"radius"`
	CategoryID *int64   `json:"category_id"`
}

// LocationUpdate is a partial update of a location.
type LocationUpdate struct {
	Name       Optional[string]  `json:"name"`
	Latitude   Optional[float64] `json:"latitude"`
	Longitude  Optional[float64] `json:"longitude"`
	Radius     Optional[float64] `json:"radius"`
	CategoryID Optional[int64]   `json:"category_id"`
}

// NearbyLocation is a location whose geofence contains the queried point.
type NearbyLocation struct {
	Location
	Distance float64 `json:"distance"` // meters from the queried point
}
