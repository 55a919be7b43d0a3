// model/book.go
package model

import "time"

// DefaultCoverColor is applied when a book is created without one.
const DefaultCoverColor = "#4A90E2"

type Book struct {
	ID              string     `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Author          string     `db:"author" json:"author"`
	Category        string     `db:"category" json:"category"`
	CategoryID      *string    `db:"category_id" json:"category_id"`
	SeriesID        *string    `db:"series_id" json:"series_id"`
	PublisherID     *string    `db:"publisher_id" json:"publisher_id"`
	CoverColor      string     `db:"cover_color" json:"cover_color"`
	CoverImageURL   *string    `db:"cover_image_url" json:"cover_image_url"`
	Available       bool       `db:"available" json:"available"`
	Description     *string    `db:"description" json:"description"`
	Age             *string    `db:"age" json:"age"`
	PublicationYear *int       `db:"publication_year" json:"publication_year"`
	ISBN            *string    `db:"isbn" json:"isbn"`
	InventoryNumber *string    `db:"inventory_number" json:"inventory_number"`
	Supplier        *string    `db:"supplier" json:"supplier"`
	NewBook         bool       `db:"new_book" json:"new_book"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	Publisher       *BookPublisher `db:"-" json:"publishers"`
	Series          *BookSeries    `db:"-" json:"series"`
}

// BookPublisher and BookSeries are the joined snippets embedded in book reads.
type BookPublisher struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type BookSeries struct {
	Name string `json:"name"`
}

// BookFilter narrows catalog listings.
type BookFilter struct {
	Category  string
	Search    string
	Available *bool
}

// BookFilterValues holds the distinct values offered by the catalog filters.
type BookFilterValues struct {
	Categories []string `json:"categories"`
	Authors    []string `json:"authors"`
	Ages       []string `json:"ages"`
	Publishers []string `json:"publishers"`
	Series     []string `json:"series"`
}
