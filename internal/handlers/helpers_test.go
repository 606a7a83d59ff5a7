package handlers

import "testing"

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int64
		wantLimit int64
		wantErr   bool
	}{
		{"defaults", "", "", 1, 20, false},
		{"explicit", "3", "50", 3, 50, false},
		{"limit capped", "1", "100000000", 1, 100, false},
		{"zero page", "0", "10", 0, 0, true},
		{"negative limit", "1", "-5", 0, 0, true},
		{"non-numeric page", "abc", "10", 0, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, limit, err := parsePaginationParams(tc.page, tc.limit)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page != tc.wantPage || limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", page, limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}
