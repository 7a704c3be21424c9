package models

import "time"

// Category groups a user's expenses
type Category struct {
	ID          int64
	Name        string
	Description *string
	OwnerID     int64
	CreatedAt   time.Time
}
