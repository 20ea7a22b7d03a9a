package model

import "time"

// Address represents a single street address from the Rostock address list
type Address struct {
	PostalCode  string `json:"postleitzahl"`
	District    string `json:"gemeindeteil_name"`
	Street      string `json:"strasse_name"`
	HouseNumber string `json:"hausnummer"`
}

// CacheEntry represents a stored response body for a request URL
type CacheEntry struct {
	Key        string
	Body       []byte
	CapturedAt time.Time
}

// Age returns how old the entry is relative to now
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CapturedAt)
}
