package products

import (
	"errors"
	"time"
)

const MaxNameLength = 200

var (
	ErrNotFound    = errors.New("Product not found")
	ErrDuplicateID = errors.New("Product ID already exists")
	ErrInvalidName = errors.New("product name must be 1-200 characters")
)

const EventCreated = "product_created"

// Product is a catalog entry. ID is chosen by the caller and never reassigned.
type Product struct {
	ID          int64   `json:"id" example:"1"`
	Name        string  `json:"name" example:"Widget"`
	Price       float64 `json:"price" example:"9.99"`
	Description *string `json:"description" example:"A small widget"`
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
