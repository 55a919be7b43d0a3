// model/catalog.go
package model

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Series struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Publisher struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	City string `db:"city" json:"city"`
}
