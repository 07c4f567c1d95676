package storage

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

// StorageError wraps any failure of the database itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type Order struct {
	ID           int64     `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	DeliveryDate time.Time `db:"delivery_date" json:"delivery_date"`
	EatingDate   time.Time `db:"-" json:"eating_date"`
	Duration     int       `db:"duration" json:"duration"`
	Comments     string    `db:"comments" json:"comments"`
	OrderDate    time.Time `db:"order_date" json:"order_date"`
	LastUpdated  time.Time `db:"last_updated" json:"last_updated"`
}

// Edited reports whether the order was changed after it was placed.
func (o Order) Edited() bool {
	return !o.OrderDate.Equal(o.LastUpdated)
}

// NewOrder holds the user supplied fields of an order. The repository stamps
// the id and timestamps.
type NewOrder struct {
	UserID       string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	DeliveryDate time.Time
	Duration     int
	Comments     string
}

// EatingDate always follows the delivery day.
func EatingDate(delivery time.Time) time.Time {
	return delivery.AddDate(0, 0, 1)
}
