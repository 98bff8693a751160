package domain

// PageRequest holds offset-based pagination parameters: skip From items, return at most Size.
type PageRequest struct {
	From int
	Size int
}

// IsZero reports whether no paging was requested.
func (p PageRequest) IsZero() bool {
	return p.From == 0 && p.Size == 0
}

// Bounds returns the half-open slice range [lo, hi) of the page within n items.
// ok is false when From is past the end, in which case the page is empty.
func (p PageRequest) Bounds(n int) (lo, hi int, ok bool) {
	if p.From >= n {
		return 0, 0, false
	}
	hi = p.From + p.Size
	if hi > n || p.Size <= 0 {
		hi = n
	}
	return p.From, hi, true
}
