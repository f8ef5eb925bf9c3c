package lookup

import id "dladmin/pkg/domain"

// Location is an issuing office.
type Location struct {
	ID     id.LocationID `json:"id"`
	Code   string        `json:"code"`
	Name   string        `json:"name"`
	Region string        `json:"region,omitempty"`
	Active bool          `json:"active"`
}

// Item is one entry of a reference list.
type Item struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Lookups maps list names (countries, nationalities, identity_document_types,
// ...) to their entries.
type Lookups map[string][]Item
