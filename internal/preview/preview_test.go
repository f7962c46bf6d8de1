package preview

import "testing"

func TestScreenCol(t *testing.T) {
	tests := []struct {
		line     string
		byteCol  int
		expected int
	}{
		{"", 0, 0},
		{"hello", 0, 0},
		{"hello", 3, 3},
		{"hello", 5, 5},
		{"hello", 10, 5}, // Beyond line
		{"\tx", 0, 0},
		{"\tx", 1, 8}, // After tab
		{"\tx", 2, 9},
		{"\t\tx", 2, 16},
		{"ab\tc", 3, 8}, // Tab mid line expands to next stop
		{"héllo", 3, 2},
	}

	for _, tt := range tests {
		got := screenCol(tt.line, tt.byteCol)
		if got != tt.expected {
			t.Errorf("screenCol(%q, %d): expected %d, got %d", tt.line, tt.byteCol, got, tt.expected)
		}
	}
}

func TestSampleSuggestionsRenderable(t *testing.T) {
	for i, lines := range SampleSuggestions() {
		if len(lines) == 0 {
			t.Errorf("sample %d is empty", i)
		}
	}
	if len(SampleBuffer()) == 0 {
		t.Error("sample buffer is empty")
	}
}
