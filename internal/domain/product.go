package domain

import "time"

// Product is a catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Quantity    int
	SKU         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
