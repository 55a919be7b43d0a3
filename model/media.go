package model

type BookMedia struct {
	ID           string `db:"id" json:"id"`
	BookID       string `db:"book_id" json:"book_id"`
	FileURL      string `db:"file_url" json:"file_url"`
	FileType     string `db:"file_type" json:"file_type"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}
