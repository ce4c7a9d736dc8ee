package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{name: "zero", in: Pagination{}, want: Pagination{Page: 1, Size: DefaultSize}},
		{name: "too large", in: Pagination{Page: 3, Size: 500}, want: Pagination{Page: 3, Size: MaxSize}},
		{name: "valid", in: Pagination{Page: 2, Size: 10}, want: Pagination{Page: 2, Size: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Pagination{Page: 3, Size: 20}).Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage[string](nil, 41, Pagination{Page: 1, Size: 20})
	if page.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.Pages)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatal("expected empty non-nil items")
	}
	if TotalPages(0, 20) != 0 || TotalPages(20, 20) != 1 {
		t.Fatal("unexpected total pages")
	}
}
