package book

import (
	booksvc "github.com/SenyaGur/ukrlibrary/service/book"
)

type ImportReq struct {
	BooksData []booksvc.ImportRow `json:"booksData"`
}
