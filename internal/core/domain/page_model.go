package domain

// Page defines the number and size of a page used when listing records.
type Page struct {
	Number int
	Size   int
}
