// Package pagination computes page counts and the bounded window of page
// links shown above and below a result table.
package pagination

import "fmt"

// Defaults used when a Config field is not set.
const (
	DefaultPageSize        = 10
	DefaultLinkDisplaySize = 10
	DefaultLinkGapSize     = 5
)

// Config holds the fixed sizes used for every calculation.
type Config struct {
	// PageSize is the number of rows per page.
	PageSize int `yaml:"page_size"`
	// LinkDisplaySize is the preferred number of page links in the window.
	LinkDisplaySize int `yaml:"link_display_size"`
	// LinkGapSize is how many links are shown on each side of the current page.
	LinkGapSize int `yaml:"link_gap_size"`
}

// DefaultConfig returns the default pagination sizes.
func DefaultConfig() Config {
	return Config{
		PageSize:        DefaultPageSize,
		LinkDisplaySize: DefaultLinkDisplaySize,
		LinkGapSize:     DefaultLinkGapSize,
	}
}

// Validate checks that all sizes are usable.
func (c Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.LinkDisplaySize < 1 {
		return fmt.Errorf("link_display_size must be positive, got %d", c.LinkDisplaySize)
	}
	if c.LinkGapSize < 0 {
		return fmt.Errorf("link_gap_size must not be negative, got %d", c.LinkGapSize)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.PageSize < 1 {
		c.PageSize = DefaultPageSize
	}
	if c.LinkDisplaySize < 1 {
		c.LinkDisplaySize = DefaultLinkDisplaySize
	}
	if c.LinkGapSize < 0 {
		c.LinkGapSize = DefaultLinkGapSize
	}
	return c
}

// Window is the derived pagination state for one result set.
//
// PreviousPage and NextPage are not clamped; callers must hide links that
// fall outside [1, TotalPages].
type Window struct {
	TotalCount   int `json:"total_count"`
	PageSize     int `json:"page_size"`
	TotalPages   int `json:"total_pages"`
	CurrentPage  int `json:"current_page"`
	StartPage    int `json:"start_page"`
	EndPage      int `json:"end_page"`
	PreviousPage int `json:"previous_page"`
	NextPage     int `json:"next_page"`
}

// Calculate derives the pagination window for totalCount rows with the
// requested page. An out-of-range page is clamped, never rejected.
func Calculate(totalCount, requestedPage int, cfg Config) Window {
	cfg = cfg.withDefaults()
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := (totalCount + cfg.PageSize - 1) / cfg.PageSize

	current := requestedPage
	if current > totalPages {
		current = totalPages
	}
	if current < 1 {
		current = 1
	}

	var start, end int
	if current-cfg.LinkGapSize <= 0 {
		start = 1
		end = current + cfg.LinkGapSize
		if end <= cfg.LinkDisplaySize {
			end = cfg.LinkDisplaySize + 1
		}
	} else {
		start = current - cfg.LinkGapSize
		end = current + cfg.LinkGapSize
	}

	if end > totalPages {
		end = totalPages
	}
	if end-start+1 < cfg.LinkDisplaySize {
		start = end - cfg.LinkDisplaySize
	}
	if start <= 0 {
		start = 1
	}

	return Window{
		TotalCount:   totalCount,
		PageSize:     cfg.PageSize,
		TotalPages:   totalPages,
		CurrentPage:  current,
		StartPage:    start,
		EndPage:      end,
		PreviousPage: current - 1,
		NextPage:     current + 1,
	}
}

// Offset is the number of rows preceding the current page.
func (w Window) Offset() int {
	return (w.CurrentPage - 1) * w.PageSize
}

// Pages returns the page numbers in the link window, in order.
// It is empty when there are no results.
func (w Window) Pages() []int {
	if w.EndPage < w.StartPage {
		return nil
	}
	pages := make([]int, 0, w.EndPage-w.StartPage+1)
	for p := w.StartPage; p <= w.EndPage; p++ {
		pages = append(pages, p)
	}
	return pages
}

// HasPrevious reports whether PreviousPage is a real page.
func (w Window) HasPrevious() bool {
	return w.PreviousPage >= 1 && w.PreviousPage <= w.TotalPages
}

// HasNext reports whether NextPage is a real page.
func (w Window) HasNext() bool {
	return w.NextPage >= 1 && w.NextPage <= w.TotalPages
}

// Empty reports whether there are no results at all.
func (w Window) Empty() bool {
	return w.TotalPages == 0
}
