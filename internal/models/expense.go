package models

import "time"

// DateLayout is the wire and storage format for expense dates
const DateLayout = "2006-01-02"

// Expense is a single spending record owned by a user
type Expense struct {
	ID          int64
	Amount      float64
	Description *string
	Date        time.Time // calendar date, time component is always zero UTC
	CategoryID  *int64    // optional, must belong to the same owner
	OwnerID     int64
	CreatedAt   time.Time
}
