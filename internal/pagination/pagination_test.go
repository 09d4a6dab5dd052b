package pagination

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCalculate(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		total int
		page  int
		want  Window
	}{
		{
			name:  "first page of ten",
			total: 95, page: 1,
			want: Window{TotalCount: 95, PageSize: 10, TotalPages: 10, CurrentPage: 1, StartPage: 1, EndPage: 10, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "page beyond total clamps to last",
			total: 95, page: 20,
			want: Window{TotalCount: 95, PageSize: 10, TotalPages: 10, CurrentPage: 10, StartPage: 1, EndPage: 10, PreviousPage: 9, NextPage: 11},
		},
		{
			name:  "zero results",
			total: 0, page: 1,
			want: Window{TotalCount: 0, PageSize: 10, TotalPages: 0, CurrentPage: 1, StartPage: 1, EndPage: 0, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "zero results with page requested",
			total: 0, page: 7,
			want: Window{TotalCount: 0, PageSize: 10, TotalPages: 0, CurrentPage: 1, StartPage: 1, EndPage: 0, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "single page",
			total: 5, page: 3,
			want: Window{TotalCount: 5, PageSize: 10, TotalPages: 1, CurrentPage: 1, StartPage: 1, EndPage: 1, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "exact multiple of page size",
			total: 10, page: 1,
			want: Window{TotalCount: 10, PageSize: 10, TotalPages: 1, CurrentPage: 1, StartPage: 1, EndPage: 1, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "one row over page size",
			total: 11, page: 2,
			want: Window{TotalCount: 11, PageSize: 10, TotalPages: 2, CurrentPage: 2, StartPage: 1, EndPage: 2, PreviousPage: 1, NextPage: 3},
		},
		{
			name:  "zero page treated as first",
			total: 95, page: 0,
			want: Window{TotalCount: 95, PageSize: 10, TotalPages: 10, CurrentPage: 1, StartPage: 1, EndPage: 10, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "negative page treated as first",
			total: 95, page: -4,
			want: Window{TotalCount: 95, PageSize: 10, TotalPages: 10, CurrentPage: 1, StartPage: 1, EndPage: 10, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "start of a long result set widens to display size plus one",
			total: 200, page: 1,
			want: Window{TotalCount: 200, PageSize: 10, TotalPages: 20, CurrentPage: 1, StartPage: 1, EndPage: 11, PreviousPage: 0, NextPage: 2},
		},
		{
			name:  "gap boundary still anchored at one",
			total: 200, page: 5,
			want: Window{TotalCount: 200, PageSize: 10, TotalPages: 20, CurrentPage: 5, StartPage: 1, EndPage: 11, PreviousPage: 4, NextPage: 6},
		},
		{
			name:  "first page past the gap slides",
			total: 200, page: 6,
			want: Window{TotalCount: 200, PageSize: 10, TotalPages: 20, CurrentPage: 6, StartPage: 1, EndPage: 11, PreviousPage: 5, NextPage: 7},
		},
		{
			name:  "middle of a long result set",
			total: 200, page: 10,
			want: Window{TotalCount: 200, PageSize: 10, TotalPages: 20, CurrentPage: 10, StartPage: 5, EndPage: 15, PreviousPage: 9, NextPage: 11},
		},
		{
			name:  "near the end expands backward",
			total: 200, page: 18,
			want: Window{TotalCount: 200, PageSize: 10, TotalPages: 20, CurrentPage: 18, StartPage: 10, EndPage: 20, PreviousPage: 17, NextPage: 19},
		},
		{
			name:  "last page expands backward",
			total: 200, page: 20,
			want: Window{TotalCount: 200, PageSize: 10, TotalPages: 20, CurrentPage: 20, StartPage: 10, EndPage: 20, PreviousPage: 19, NextPage: 21},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.total, tt.page, cfg)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Calculate(%d, %d) mismatch (-want +got):\n%s", tt.total, tt.page, diff)
			}
		})
	}
}

func TestCalculateInvariants(t *testing.T) {
	for pageSize := 1; pageSize <= 25; pageSize += 3 {
		for display := 1; display <= 12; display++ {
			for gap := 0; gap <= 6; gap++ {
				cfg := Config{PageSize: pageSize, LinkDisplaySize: display, LinkGapSize: gap}
				for total := 0; total <= 400; total += 7 {
					for page := -1; page <= 70; page += 3 {
						w := Calculate(total, page, cfg)
						checkInvariants(t, cfg, total, page, w)
					}
				}
			}
		}
	}
}

func checkInvariants(t *testing.T, cfg Config, total, page int, w Window) {
	t.Helper()

	wantPages := total / cfg.PageSize
	if total%cfg.PageSize != 0 {
		wantPages++
	}
	if w.TotalPages != wantPages {
		t.Fatalf("cfg=%+v total=%d: TotalPages = %d, want %d", cfg, total, w.TotalPages, wantPages)
	}

	maxPage := w.TotalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if w.CurrentPage < 1 || w.CurrentPage > maxPage {
		t.Fatalf("cfg=%+v total=%d page=%d: CurrentPage %d outside [1, %d]", cfg, total, page, w.CurrentPage, maxPage)
	}
	if w.PreviousPage != w.CurrentPage-1 || w.NextPage != w.CurrentPage+1 {
		t.Fatalf("cfg=%+v total=%d page=%d: prev/next = %d/%d around %d", cfg, total, page, w.PreviousPage, w.NextPage, w.CurrentPage)
	}

	if w.TotalPages == 0 {
		if len(w.Pages()) != 0 {
			t.Fatalf("cfg=%+v: expected no page links for empty result, got %v", cfg, w.Pages())
		}
		return
	}

	if !(1 <= w.StartPage && w.StartPage <= w.EndPage && w.EndPage <= w.TotalPages) {
		t.Fatalf("cfg=%+v total=%d page=%d: window [%d, %d] not within [1, %d]", cfg, total, page, w.StartPage, w.EndPage, w.TotalPages)
	}
	if w.CurrentPage < w.StartPage || w.CurrentPage > w.EndPage {
		t.Fatalf("cfg=%+v total=%d page=%d: current %d outside window [%d, %d]", cfg, total, page, w.CurrentPage, w.StartPage, w.EndPage)
	}

	// The window keeps at least the display width whenever the gap on both
	// sides covers it.
	if 2*cfg.LinkGapSize+1 >= cfg.LinkDisplaySize {
		width := w.EndPage - w.StartPage + 1
		minWidth := cfg.LinkDisplaySize
		if w.TotalPages < minWidth {
			minWidth = w.TotalPages
		}
		if width < minWidth {
			t.Fatalf("cfg=%+v total=%d page=%d: width %d < %d", cfg, total, page, width, minWidth)
		}
	}
}

func TestWindowLinks(t *testing.T) {
	w := Calculate(35, 2, Config{PageSize: 10, LinkDisplaySize: 10, LinkGapSize: 5})
	if diff := cmp.Diff([]int{1, 2, 3, 4}, w.Pages()); diff != "" {
		t.Errorf("Pages() mismatch (-want +got):\n%s", diff)
	}
	if !w.HasPrevious() || !w.HasNext() {
		t.Errorf("expected both previous and next on page 2 of 4, got prev=%v next=%v", w.HasPrevious(), w.HasNext())
	}
	if w.Offset() != 10 {
		t.Errorf("Offset() = %d, want 10", w.Offset())
	}

	first := Calculate(35, 1, DefaultConfig())
	if first.HasPrevious() {
		t.Error("first page should not have a previous link")
	}
	last := Calculate(35, 4, DefaultConfig())
	if last.HasNext() {
		t.Error("last page should not have a next link")
	}
	if !Calculate(0, 1, DefaultConfig()).Empty() {
		t.Error("zero results should be empty")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := []Config{
		{PageSize: 0, LinkDisplaySize: 10, LinkGapSize: 5},
		{PageSize: 10, LinkDisplaySize: 0, LinkGapSize: 5},
		{PageSize: 10, LinkDisplaySize: 10, LinkGapSize: -1},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", c)
		}
	}
}

func TestCalculateZeroConfigUsesDefaults(t *testing.T) {
	got := Calculate(95, 1, Config{LinkGapSize: -1})
	want := Calculate(95, 1, DefaultConfig())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("zero config mismatch (-want +got):\n%s", diff)
	}
}
