package models

import (
	"bytes"
	"encoding/json"
)

// Perfume is one inventory entry. UserID is the owner and is never exposed
// or changed through the API.
type Perfume struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"-"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Description *string `json:"description"`
	Stock       int     `json:"stock"`
	Price       float64 `json:"price"`
}

// PerfumeInput carries the fields of a new perfume.
type PerfumeInput struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Description *string `json:"description"`
	Stock       int     `json:"stock"`
	Price       float64 `json:"price"`
}

// PerfumePatch is a partial update. A nil pointer means the field was not
// sent and must be left untouched.
type PerfumePatch struct {
	Name        *string        `json:"name"`
	Brand       *string        `json:"brand"`
	Description OptionalString `json:"description"`
	Stock       *int           `json:"stock"`
	Price       *float64       `json:"price"`
}

// Empty reports whether the patch names no field at all.
func (p PerfumePatch) Empty() bool {
	return p.Name == nil && p.Brand == nil && !p.Description.Set && p.Stock == nil && p.Price == nil
}

// Apply merges the present fields into a copy of current and returns it.
func (p PerfumePatch) Apply(current Perfume) Perfume {
	next := current
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Brand != nil {
		next.Brand = *p.Brand
	}
	if p.Description.Set {
		next.Description = p.Description.Value
	}
	if p.Stock != nil {
		next.Stock = *p.Stock
	}
	if p.Price != nil {
		next.Price = *p.Price
	}
	return next
}

// OptionalString tells an absent JSON key apart from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// NewOptionalString is a shorthand for a present, non-null value.
func NewOptionalString(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}
