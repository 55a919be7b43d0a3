// model/reader.go
package model

import "time"

type Reader struct {
	ID            string    `db:"id" json:"id"`
	ParentName    string    `db:"parent_name" json:"parent_name"`
	ParentSurname string    `db:"parent_surname" json:"parent_surname"`
	Phone1        string    `db:"phone1" json:"phone1"`
	Phone2        *string   `db:"phone2" json:"phone2"`
	Email         string    `db:"email" json:"email"`
	Address       string    `db:"address" json:"address"`
	Comment       string    `db:"comment" json:"comment"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	Children      []Child   `db:"-" json:"children"`
}

type Child struct {
	ID        string `db:"id" json:"id"`
	ReaderID  string `db:"reader_id" json:"reader_id"`
	Name      string `db:"name" json:"name"`
	Surname   string `db:"surname" json:"surname"`
	BirthDate string `db:"birth_date" json:"birth_date"`
	Gender    string `db:"gender" json:"gender"`
}

// DefaultAddress is the placeholder used when a reader is created implicitly
// from a rental request and no address is known.
const DefaultAddress = "не вказано"
