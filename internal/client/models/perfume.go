// Package models holds the client-side shapes of API resources.
package models

import "encoding/json"

type Account struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type Perfume struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Description *string `json:"description"`
	Stock       int     `json:"stock"`
	Price       float64 `json:"price"`
}

// PerfumeDraft is the body of a create request.
type PerfumeDraft struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Description *string `json:"description,omitempty"`
	Stock       int     `json:"stock"`
	Price       float64 `json:"price"`
}

// PerfumeChanges is a partial update. Only non-nil fields are sent;
// ClearDescription sends an explicit null.
type PerfumeChanges struct {
	Name             *string
	Brand            *string
	Description      *string
	ClearDescription bool
	Stock            *int
	Price            *float64
}

func (c PerfumeChanges) Empty() bool {
	return c.Name == nil && c.Brand == nil && c.Description == nil && !c.ClearDescription &&
		c.Stock == nil && c.Price == nil
}

func (c PerfumeChanges) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 5)
	if c.Name != nil {
		body["name"] = *c.Name
	}
	if c.Brand != nil {
		body["brand"] = *c.Brand
	}
	switch {
	case c.Description != nil:
		body["description"] = *c.Description
	case c.ClearDescription:
		body["description"] = nil
	}
	if c.Stock != nil {
		body["stock"] = *c.Stock
	}
	if c.Price != nil {
		body["price"] = *c.Price
	}
	return json.Marshal(body)
}
