package parse

import "testing"

func TestExpandSet(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain members", "abc", "abc"},
		{"range", "a-c", "abc"},
		{"leading hyphen literal", "-ac", "-ac"},
		{"trailing hyphen literal", "ac-", "ac-"},
		{"escaped range endpoint", `\[-\]`, "[\\]"},
		{"escape resets so a later range still works", `\na-c`, "nabc"},
		{"multiple ranges", "a-cx-z", "abcxyz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExpandSet([]rune(tc.body), 0)
			if err != nil {
				t.Fatalf("ExpandSet(%q) error: %v", tc.body, err)
			}
			if string(got) != tc.want {
				t.Errorf("ExpandSet(%q) = %q, want %q", tc.body, string(got), tc.want)
			}
		})
	}
}

func TestExpandSetEscapeDoesNotStickAcrossRestOfBody(t *testing.T) {
	// Confirms the escaped flag is consumed by exactly the rune right
	// after the backslash, not left set for the remainder of the body.
	got, err := ExpandSet([]rune(`\a-c`), 0)
	if err != nil {
		t.Fatalf("ExpandSet error: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("ExpandSet(%q) = %q, want %q", `\a-c`, string(got), "abc")
	}
}

func TestExpandSetInvertedRange(t *testing.T) {
	_, err := ExpandSet([]rune("z-a"), 5)
	if err == nil || err.Kind != ERange {
		t.Fatalf("ExpandSet(%q) = %v, want ERange", "z-a", err)
	}
	if err.Pos != 6 {
		t.Errorf("ExpandSet error Pos = %d, want 6", err.Pos)
	}
}
