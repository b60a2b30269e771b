package model

import (
	"errors"
	"time"
)

var (
	ErrAlreadyReserved = errors.New("slot is already reserved")
	ErrAlreadyReleased = errors.New("slot is not reserved")
)

// Slot (créneau) is a bookable time interval at a site. The interval is
// half-open: [StartTime, EndTime). Invariant: Reserved is true iff
// CaseRef is non-nil.
type Slot struct {
	Meta      `bson:",inline"`
	SiteID    string    `json:"site_id" bson:"site_id" validate:"required"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Reserved  bool      `json:"reserved" bson:"reserved"`
	CaseRef   *CaseRef  `json:"case_ref,omitempty" bson:"case_ref,omitempty"`
	Margin    int       `json:"margin,omitempty" bson:"margin,omitempty"`
}

// Reserve marks the slot as held by the given case file. The mutation is
// in-memory only; the caller must still persist the slot through the
// store for the reservation to take effect.
func (s *Slot) Reserve(ref CaseRef) error {
	if s.Reserved {
		return ErrAlreadyReserved
	}
	s.Reserved = true
	s.CaseRef = &ref
	return nil
}

// Release clears the reservation. In-memory only, same as Reserve.
func (s *Slot) Release() error {
	if !s.Reserved {
		return ErrAlreadyReleased
	}
	s.Reserved = false
	s.CaseRef = nil
	return nil
}
