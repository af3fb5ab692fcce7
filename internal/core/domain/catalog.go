package domain

import "github.com/shopspring/decimal"

// NamedEntity backs the name-keyed lookup tables: genres, stars, directors
// and certifications. Names are unique within each table.
type NamedEntity struct {
	ID   int64
	Name string
}

// Movie is a catalog entry. The (Name, Year, Time) triple is unique.
type Movie struct {
	ID              int64
	UUID            string
	Name            string
	Year            int
	Time            int
	IMDb            float64
	Votes           int
	MetaScore       *float64
	Gross           *float64
	Description     string
	Price           decimal.Decimal
	CertificationID int64

	Certification NamedEntity
	Genres        []NamedEntity
	Stars         []NamedEntity
	Directors     []NamedEntity
}
