package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventhub/internal/domain"
)

// Paging query parameter defaults.
const (
	DefaultFrom = 0
	DefaultSize = 10
)

// ParsePage reads from and size from the request query string.
// Missing values take defaults; from must be >= 0 and size > 0.
func ParsePage(r *http.Request) (domain.PageRequest, error) {
	page := domain.PageRequest{From: DefaultFrom, Size: DefaultSize}
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return page, fmt.Errorf("from must be a non-negative integer, got %q", s)
		}
		page.From = v
	}
	if s := q.Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return page, fmt.Errorf("size must be a positive integer, got %q", s)
		}
		page.Size = v
	}
	return page, nil
}
