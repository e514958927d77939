package engine

import "testing"

func TestIsClarification(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"question mark", "Which time interval would you like?", true},
		{"specify", "Please SPECIFY the ticker symbol.", true},
		{"clarify", "Could you clarify the date range.", true},
		{"need more information", "I need more information about the market.", true},
		{"please provide", "Please provide the company name.", true},
		{"i also need", "I also need the reporting currency.", true},
		{"please choose", "Please choose one of the listed exchanges.", true},
		{"plain answer", "Revenue grew 12% year over year.", false},
		{"empty", "", false},
		{"whitespace", "   ", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsClarification(tc.text); got != tc.want {
				t.Errorf("IsClarification(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"stocks went up today", 4},
		{"  spaced   out   words  ", 3},
	}
	for _, tc := range tests {
		if got := WordCount(tc.text); got != tc.want {
			t.Errorf("WordCount(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
