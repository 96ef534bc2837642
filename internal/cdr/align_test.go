package cdr

import "testing"

func TestPadding(t *testing.T) {
	cases := []struct {
		name string
		o, w int
		want int
	}{
		{"width_1_never_pads", 7, 1, 0},
		{"already_aligned_4", 4, 4, 0},
		{"already_aligned_8", 12, 8, 0},
		{"needs_2_to_reach_4", 6, 4, 2},
		{"needs_1_to_reach_2", 5, 2, 1},
		{"needs_4_to_reach_8", 8, 8, 4},
		{"header_itself_is_origin", 8, 8, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Padding(c.o, c.w); got != c.want {
				t.Fatalf("Padding(%d, %d) = %d, want %d", c.o, c.w, got, c.want)
			}
		})
	}
}

func TestAligned(t *testing.T) {
	if got := Aligned(6, 4); got != 8 {
		t.Fatalf("Aligned(6, 4) = %d, want 8", got)
	}
	if got := Aligned(4, 4); got != 4 {
		t.Fatalf("Aligned(4, 4) = %d, want 4 (already aligned)", got)
	}
}

func TestPaddingIsRelativeToEncapsulationHeader(t *testing.T) {
	// Offset 4 is the first byte after the header, and must be treated as
	// alignment origin zero, not as offset 4 from the buffer start.
	if got := Padding(EncapsulationHeaderSize, 8); got != 0 {
		t.Fatalf("Padding(4, 8) = %d, want 0 (first post-header byte is 8-aligned)", got)
	}
	if got := Padding(EncapsulationHeaderSize+1, 8); got != 7 {
		t.Fatalf("Padding(5, 8) = %d, want 7", got)
	}
}
