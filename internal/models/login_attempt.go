package models

import "time"

// LoginAttempt is one immutable row of the attempt log.
// Rows are written once per login/token outcome and never updated.
type LoginAttempt struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	IPAddress *string   `db:"ip_address"`
	Success   bool      `db:"success"` // stored as 0/1
	Timestamp time.Time `db:"timestamp"`
}
