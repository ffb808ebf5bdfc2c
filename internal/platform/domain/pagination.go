package domain

// Page describes a window into an ordered result set: From is a
// zero-based offset into the sequence, Size the maximum number of
// records returned.
type Page struct {
	From int
	Size int
}

// NewPage validates and builds a pagination window.
func NewPage(from, size int) (Page, error) {
	if from < 0 {
		return Page{}, NewValidationError("pagination offset must not be negative")
	}
	if size < 1 {
		return Page{}, NewValidationError("pagination size must be at least 1")
	}
	return Page{From: from, Size: size}, nil
}
