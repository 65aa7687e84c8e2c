package domain

import "testing"

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(2, 2, 5)
	if meta.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 5 records of size 2, got %d", meta.TotalPages)
	}
	if !meta.HasNext || !meta.HasPrevious {
		t.Fatalf("page 2 of 3 should have both neighbours: %+v", meta)
	}

	first := NewPageMeta(1, 20, 5)
	if first.TotalPages != 1 || first.HasNext || first.HasPrevious {
		t.Fatalf("single page should have no neighbours: %+v", first)
	}

	empty := NewPageMeta(1, 20, 0)
	if empty.TotalPages != 0 || empty.HasNext || empty.HasPrevious {
		t.Fatalf("empty listing should have no pages: %+v", empty)
	}
}
