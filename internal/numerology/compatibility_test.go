package numerology

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		a, b int
		want int
	}{
		{3, 3, 100},
		{3, 4, 90},
		{4, 3, 90},
		{1, 9, 20},
		{1, 11, 10},
		{2, 33, 10},
		{22, 22, 100},
	}
	for _, tt := range tests {
		if got := Score(tt.a, tt.b); got != tt.want {
			t.Errorf("Score(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	a := Reading{LifePath: 3, Destiny: 8, SoulUrge: 6, Personality: 11}
	b := Reading{LifePath: 5, Destiny: 8, SoulUrge: 1, Personality: 7}

	got := Compare(a, b)
	// 80 + 100 + 50 + 60 = 290, 290/4 = 72.5, rounds half away from zero.
	want := CompatibilityResult{
		Overall:        73,
		LifePath:       80,
		Destiny:        100,
		SoulUrge:       50,
		Personality:    60,
		Interpretation: "Good compatibility with moderate potential for a fulfilling relationship.",
	}
	if got != want {
		t.Errorf("Compare = %+v, want %+v", got, want)
	}

	if rev := Compare(b, a); rev != got {
		t.Errorf("Compare not symmetric: %+v vs %+v", got, rev)
	}
}

func TestCompare_Identical(t *testing.T) {
	r := Reading{LifePath: 11, Destiny: 22, SoulUrge: 1, Personality: 9}
	got := Compare(r, r)
	if got.Overall != 100 || got.LifePath != 100 || got.Destiny != 100 || got.SoulUrge != 100 || got.Personality != 100 {
		t.Errorf("Compare(r, r) = %+v, want 100 everywhere", got)
	}
}

func TestCompatibilityBand(t *testing.T) {
	tests := []struct {
		overall int
		prefix  string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{89, "Very good"},
		{80, "Very good"},
		{70, "Good"},
		{60, "Fair"},
		{50, "Moderate"},
		{49, "Challenging"},
		{10, "Challenging"},
	}
	for _, tt := range tests {
		got := CompatibilityBand(tt.overall)
		if len(got) < len(tt.prefix) || got[:len(tt.prefix)] != tt.prefix {
			t.Errorf("CompatibilityBand(%d) = %q, want prefix %q", tt.overall, got, tt.prefix)
		}
	}
}
