package model

// Site is a reception site (guichet unique) slots belong to.
// MaxDaysAhead bounds how far ahead bookings may search for a free
// slot, in business days; 0 means unlimited lookahead.
type Site struct {
	Meta         `bson:",inline"`
	Name         string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City         string `json:"city" bson:"city" validate:"required,min=2,max=50"`
	MaxDaysAhead int    `json:"max_days_ahead" bson:"max_days_ahead" validate:"min=0,max=365"`
}
