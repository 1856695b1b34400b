package pagination

import (
	"errors"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	p, err := Parse("", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Page != DefaultPage || p.Limit != DefaultLimit {
		t.Fatalf("expected defaults %d/%d, got %d/%d", DefaultPage, DefaultLimit, p.Page, p.Limit)
	}
	if p.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", p.Offset())
	}
}

func TestParse_Bounds(t *testing.T) {
	cases := []struct {
		name  string
		page  string
		limit string
	}{
		{"zero page", "0", "10"},
		{"negative page", "-1", "10"},
		{"zero limit", "1", "0"},
		{"limit over max", "1", "101"},
		{"non-numeric page", "abc", "10"},
		{"non-numeric limit", "1", "xyz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.page, tc.limit); !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestParse_Offset(t *testing.T) {
	p, err := Parse("3", "25")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Offset() != 50 {
		t.Fatalf("expected offset 50, got %d", p.Offset())
	}
}

func TestNewBlock_TotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 33, 4},
	}
	for _, tc := range cases {
		b := NewBlock(Params{Page: 1, Limit: tc.limit}, tc.total)
		if b.TotalPages != tc.want {
			t.Fatalf("total=%d limit=%d: expected %d pages, got %d", tc.total, tc.limit, tc.want, b.TotalPages)
		}
		if b.Total != tc.total {
			t.Fatalf("expected total %d carried through, got %d", tc.total, b.Total)
		}
	}
}

func TestNewBlock_BeyondLastPage(t *testing.T) {
	// Page past the data is legal; the block still reports the real totals.
	b := NewBlock(Params{Page: 9, Limit: 20}, 5)
	if b.Page != 9 || b.Total != 5 || b.TotalPages != 1 {
		t.Fatalf("unexpected block: %+v", b)
	}
}
