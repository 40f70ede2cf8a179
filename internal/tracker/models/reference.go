package models

// Category and Retailer are static reference data. Rows must exist before any
// listing referencing them is ingested.
type Category struct {
	ID   int64
	Name string
}

type Retailer struct {
	ID   int64
	Name string
	URL  string
}
