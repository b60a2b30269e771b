package model

import "time"

// Meta carries the identity and optimistic-concurrency fields shared by
// every persisted document. Version starts at 1 on insert and is
// incremented by exactly 1 on every successful save, which is what the
// store's compare-and-swap checks against.
type Meta struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Document is implemented by every persisted model so the versioned
// store can do identity and version bookkeeping generically.
type Document interface {
	DocMeta() *Meta
}

func (m *Meta) DocMeta() *Meta { return m }
