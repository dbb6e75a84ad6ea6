package models

// Page is an offset window over an ordered result.
type Page struct {
	From int
	Size int
}

// DefaultPage is the window used when a caller does not pass from/size.
func DefaultPage() Page {
	return Page{From: DefaultPageFrom, Size: DefaultPageSize}
}

// Unbounded reports whether the page places no limit on the result.
func (p Page) Unbounded() bool {
	return p.Size <= 0
}

// AllRows is a page without limit, used for exports.
var AllRows = Page{}
