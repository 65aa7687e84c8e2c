package service

import "testing"

func TestNormalizeUserPagination(t *testing.T) {
	cases := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-5, -3, 50, 0},
		{500, 10, 200, 10},
		{25, 5, 25, 5},
	}
	for _, tc := range cases {
		limit, offset := normalizeUserPagination(tc.limit, tc.offset)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Fatalf("normalizeUserPagination(%d, %d) = (%d, %d), want (%d, %d)",
				tc.limit, tc.offset, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}
