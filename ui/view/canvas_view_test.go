package view

import "testing"

func TestEventSize(t *testing.T) {
	cases := []struct {
		w, h         string
		wantW, wantH int
		ok           bool
	}{
		{"640", "480", 640, 480, true},
		{" 800", "600 ", 800, 600, true},
		{"1", "480", 0, 0, false},
		{"640", "0", 0, 0, false},
		{"", "480", 0, 0, false},
		{"640", "??", 0, 0, false},
	}
	for _, tc := range cases {
		w, h, ok := eventSize(tc.w, tc.h)
		if ok != tc.ok || w != tc.wantW || h != tc.wantH {
			t.Fatalf("eventSize(%q, %q) = %d,%d,%v want %d,%d,%v", tc.w, tc.h, w, h, ok, tc.wantW, tc.wantH, tc.ok)
		}
	}
}
