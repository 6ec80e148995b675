package address

import "time"

// Address is the one canonical shape the rest of the sync layer sees.
// The remote service spells the same concepts several ways (default
// flags, postal code, street line); normalization happens once at the
// boundary and business logic never branches on aliases.
type Address struct {
	ID         int64  `json:"id"`
	UID        string `json:"uid"`
	Label      string `json:"label"`
	Line       string `json:"line"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`

	// IsDefault reflects the recognized remote default flags. DefaultHint
	// is set when any other default-like field is truthy, a defensive
	// superset check against schema drift.
	IsDefault   bool `json:"isDefault"`
	DefaultHint bool `json:"defaultHint"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasNumericID reports whether the address carries the backend id that
// order submission requires.
func (a Address) HasNumericID() bool {
	return a.ID > 0
}

// ModifiedAt returns the freshest timestamp available for tie-breaks.
func (a Address) ModifiedAt() time.Time {
	if a.UpdatedAt.After(a.CreatedAt) {
		return a.UpdatedAt
	}
	return a.CreatedAt
}
