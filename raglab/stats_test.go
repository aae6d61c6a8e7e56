package raglab

import "testing"

func Test_TextLengthStats(t *testing.T) {
	stats := new(TextLengthStats)

	for _, n := range []int{100, 50, 200} {
		stats.Add(n)
	}

	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.MinChars != 50 {
		t.Errorf("MinChars = %d, want 50", stats.MinChars)
	}
	if stats.MaxChars != 200 {
		t.Errorf("MaxChars = %d, want 200", stats.MaxChars)
	}

	wantAvg := float64(350) / 3
	if stats.AvgChars() != wantAvg {
		t.Errorf("AvgChars() = %f, want %f", stats.AvgChars(), wantAvg)
	}
}

func Test_TextLengthStats_Empty(t *testing.T) {
	stats := new(TextLengthStats)

	if stats.AvgChars() != 0 {
		t.Errorf("AvgChars() on empty stats = %f, want 0", stats.AvgChars())
	}
}

func Test_SafePreview(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"newlines escaped", "line1\nline2", 20, "line1\\nline2"},
		{"long text truncated", "abcdefghij", 4, "abcd..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafePreview(tt.text, tt.maxChars); got != tt.want {
				t.Errorf("SafePreview() = %q, want %q", got, tt.want)
			}
		})
	}
}
