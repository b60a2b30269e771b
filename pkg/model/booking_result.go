package model

import "time"

// BookingResult is the transient outcome of one booking attempt: the
// slot(s) held (one for a single applicant, two consecutive ones for a
// family), or none when the search was unsatisfied.
//
// A satisfied result is not confirmed yet; the caller confirms it only
// after its own case file has been durably saved, or cancels it to
// release the slots.
type BookingResult struct {
	Slots       []*Slot   `json:"slots"`
	Satisfied   bool      `json:"satisfied"`
	Confirmed   bool      `json:"confirmed"`
	SearchStart time.Time `json:"search_start"`
}
