package models

import "time"

// Location is a client-supplied coordinate pair. It is stored as given and
// never validated server-side.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Report is the central entity of the service.
type Report struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Location    *Location  `json:"location"`
	Address     string     `json:"address,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Department  string     `json:"department,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	Image       string     `json:"image,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// CreateReportRequest carries the client-settable creation fields. Anything
// else in the request body is dropped; id, status and createdAt are always
// server-assigned.
type CreateReportRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Location    *Location `json:"location"`
	Address     string    `json:"address"`
	Priority    string    `json:"priority"`
}

// UpdateReportRequest is the PATCH allow-list. Nil means "not present in the
// request"; unknown JSON keys are ignored by decoding into this struct.
type UpdateReportRequest struct {
	Status      *string `json:"status"`
	Department  *string `json:"department"`
	Assignee    *string `json:"assignee"`
	Priority    *string `json:"priority"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// SubscribeRequest registers a push notification device token.
type SubscribeRequest struct {
	Token string `json:"token"`
}

type SubscribeResponse struct {
	OK     bool `json:"ok"`
	Tokens int  `json:"tokens"`
}

// Viewport is a lat/lon bounding box for map queries.
type Viewport struct {
	LatMin float64
	LonMin float64
	LatMax float64
	LonMax float64
}

// MapResult is one pin or cluster of report locations on the map.
type MapResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
