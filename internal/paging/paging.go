// Package paging holds the arithmetic behind the history tables: which rows
// a page covers and which page buttons to show.
package paging

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 10

// Slot is one entry of a page bar: a page number or a gap marker.
type Slot struct {
	Page int
	Gap  bool
}

// State describes the current page of a server-paginated collection.
type State struct {
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

// New returns page 1 with size (DefaultPageSize when non-positive).
func New(size int) State {
	if size <= 0 {
		size = DefaultPageSize
	}
	return State{Page: 1, PageSize: size, TotalPages: 1}
}

// Normalize clamps fields into their valid ranges.
func (s State) Normalize() State {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.TotalPages < 1 {
		s.TotalPages = 1
	}
	if s.Total < 0 {
		s.Total = 0
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

// CanGo reports whether moving to page p would change anything.
func (s State) CanGo(p int) bool {
	s = s.Normalize()
	return p >= 1 && p <= s.TotalPages && p != s.Page
}

// HasPrev reports whether a previous page exists.
func (s State) HasPrev() bool { return s.CanGo(s.Page - 1) }

// HasNext reports whether a next page exists.
func (s State) HasNext() bool { return s.CanGo(s.Page + 1) }

// Empty reports whether the collection has no rows at all.
func (s State) Empty() bool { return s.Total == 0 }

// Range returns the 1-based inclusive row range the current page covers:
// start = (page-1)*size + 1, end = min(page*size, total). Both are zero
// when the collection is empty.
func (s State) Range() (start, end int) {
	s = s.Normalize()
	if s.Total == 0 {
		return 0, 0
	}
	start = (s.Page-1)*s.PageSize + 1
	end = s.Page * s.PageSize
	if end > s.Total {
		end = s.Total
	}
	if start > end {
		start = end
	}
	return start, end
}

// RowNumber returns the sequence number of the i-th row (0-based) of the
// current page.
func (s State) RowNumber(i int) int {
	s = s.Normalize()
	return (s.Page-1)*s.PageSize + i + 1
}

// Window returns the page bar: the first and last page always, the current
// page with one neighbour on each side, and a gap wherever pages are skipped.
// With 9 pages on page 5 that is 1 … 4 5 6 … 9.
func (s State) Window() []Slot {
	s = s.Normalize()
	last := s.TotalPages
	cur := s.Page
	if cur > last {
		cur = last
	}

	var slots []Slot
	prev := 0
	for p := 1; p <= last; p++ {
		if p != 1 && p != last && (p < cur-1 || p > cur+1) {
			continue
		}
		if prev != 0 && p > prev+1 {
			slots = append(slots, Slot{Gap: true})
		}
		slots = append(slots, Slot{Page: p})
		prev = p
	}
	return slots
}
