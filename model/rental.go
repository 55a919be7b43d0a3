// model/rental.go
package model

import "time"

type RentalStatus string

const (
	RentalPending  RentalStatus = "pending"
	RentalApproved RentalStatus = "approved"
	RentalQueued   RentalStatus = "queued"
	RentalDeclined RentalStatus = "declined"
	RentalReturned RentalStatus = "returned"
)

// Valid reports whether s is one of the known statuses.
func (s RentalStatus) Valid() bool {
	switch s {
	case RentalPending, RentalApproved, RentalQueued, RentalDeclined, RentalReturned:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s RentalStatus) Terminal() bool {
	return s == RentalDeclined || s == RentalReturned
}

type RentalRequest struct {
	ID             string       `db:"id" json:"id"`
	BookID         string       `db:"book_id" json:"book_id"`
	BookTitle      string       `db:"book_title" json:"book_title"`
	RenterName     string       `db:"renter_name" json:"renter_name"`
	RenterPhone    string       `db:"renter_phone" json:"renter_phone"`
	RenterEmail    string       `db:"renter_email" json:"renter_email"`
	RentalDuration string       `db:"rental_duration" json:"rental_duration"`
	Status         RentalStatus `db:"status" json:"status"`
	// QueuePosition is set iff Status == RentalQueued.
	QueuePosition *int       `db:"queue_position" json:"queue_position"`
	RequestedAt   time.Time  `db:"requested_at" json:"requested_at"`
	ApprovedAt    *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	ReturnDate    *time.Time `db:"return_date" json:"return_date,omitempty"`
	ReaderID      *string    `db:"reader_id" json:"reader_id"`
	ChildID       *string    `db:"child_id" json:"child_id"`
}

// QueueEntry is the public shape of a waitlist row, ordered by position.
type QueueEntry struct {
	ID            string    `db:"id" json:"id"`
	RenterName    string    `db:"renter_name" json:"renter_name"`
	QueuePosition int       `db:"queue_position" json:"queue_position"`
	RequestedAt   time.Time `db:"requested_at" json:"requested_at"`
}
