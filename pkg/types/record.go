package types

import "time"

// Common status values. Tables pick their own subset.
const (
	StatusValid    = "Valid"
	StatusInvalid  = "Invalid"
	StatusPending  = "Pending"
	StatusPaid     = "Paid"
	StatusRefunded = "Refunded"
	StatusFailed   = "Failed"
	StatusLive     = "Live"
	StatusOffline  = "Offline"
	StatusBanned   = "Banned"
	StatusHandled  = "Handled"
	StatusRejected = "Rejected"
)

// Base holds the columns every admin row carries. Entities embed it.
type Base struct {
	ID         string     `json:"id"`                    // UUID v7, generated on create.
	Number     int        `json:"number"`                // Display sequence, max+1 on create.
	Status     string     `json:"status"`                // One of the table's status values.
	Sort       int        `json:"sort"`                  // Ascending order key for sorted tables.
	CreatedAt  time.Time  `json:"created_at"`            // Timestamp of creation.
	UpdatedAt  time.Time  `json:"updated_at"`            // Timestamp of last modification.
	RecycledAt *time.Time `json:"recycled_at,omitempty"` // Set while the row is in the recycle bin.
}

// Meta returns the embedded Base so generic code can reach the shared
// columns of any entity.
func (b *Base) Meta() *Base { return b }

// Recycled reports whether the row is in the recycle bin.
func (b *Base) Recycled() bool { return b.RecycledAt != nil }

// Record is implemented by every entity pointer through its embedded Base.
type Record interface {
	Meta() *Base
}

// ImmutableFields are the Base keys a create payload or update patch may not
// set. Collections strip them before decoding.
var ImmutableFields = []string{"id", "number", "created_at", "updated_at", "recycled_at"}
