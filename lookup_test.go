package polycanyon

import "testing"

func TestFindStructure(t *testing.T) {
	c := newTestCanyon([]Structure{
		{Number: 1, Name: "Shell House"},
		{Number: 2, Name: "Bridge House"},
		{Number: 3, Name: "Sun Dial"},
	}, nil)

	tests := []struct {
		name       string
		query      string
		fuzzy      int
		wantNumber int
		wantOK     bool
	}{
		{"exact", "Shell House", 0, 1, true},
		{"exact case-insensitive", "shell house", 0, 1, true},
		{"exact with spaces", "  Sun Dial  ", 0, 3, true},
		{"typo rejected without fuzz", "Shel House", 0, 0, false},
		{"one edit", "Shel House", 1, 1, true},
		{"two edits", "shell huose", 2, 1, true},
		{"beyond distance", "Shed Mouse Hut", 2, 0, false},
		{"empty query", "", 2, 0, false},
		{"unrelated", "Water Tank", 2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := c.FindStructure(tt.query, LookupOptions{FuzzyDistance: tt.fuzzy})
			if ok != tt.wantOK {
				t.Fatalf("FindStructure(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if ok && s.Number != tt.wantNumber {
				t.Errorf("FindStructure(%q) = structure %d, want %d", tt.query, s.Number, tt.wantNumber)
			}
		})
	}
}

func TestFindStructureTieBreaksToLowerNumber(t *testing.T) {
	// "Dial" is one edit from both "Dials" entries; the lower number wins.
	c := newTestCanyon([]Structure{
		{Number: 9, Name: "Dialn"},
		{Number: 4, Name: "Dials"},
	}, nil)

	s, ok := c.FindStructure("Dial", LookupOptions{FuzzyDistance: 1})
	if !ok {
		t.Fatal("expected a fuzzy match")
	}
	if s.Number != 4 {
		t.Errorf("tie broken to structure %d, want 4", s.Number)
	}
}

func TestFindStructureDistanceCap(t *testing.T) {
	c := newTestCanyon([]Structure{{Number: 1, Name: "Shell House"}}, nil)

	// Requested distance above the cap is clamped, not honored.
	if _, ok := c.FindStructure("Spell Mouse Hut", LookupOptions{FuzzyDistance: 50}); ok {
		t.Error("match found beyond the fuzzy distance cap")
	}
}
