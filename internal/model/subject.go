package model

import "time"

// Subject is a quiz topic from the catalog (e.g. "DSA", "System Design").
type Subject struct {
	ID        int       `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
