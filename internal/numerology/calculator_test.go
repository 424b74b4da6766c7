package numerology

import (
	"testing"
	"time"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseBirthDate(s)
	if err != nil {
		t.Fatalf("ParseBirthDate(%q): %v", s, err)
	}
	return d
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		system System
		letter rune
		want   int
	}{
		{Pythagorean, 'A', 1},
		{Pythagorean, 'i', 9},
		{Pythagorean, 'J', 1},
		{Pythagorean, 'Z', 8},
		{Chaldean, 'F', 8},
		{Chaldean, 'O', 7},
		{Chaldean, 'Z', 7},
		{Kabbalah, 'J', 10},
		{Kabbalah, 'Z', 800},
		{Pythagorean, ' ', 0},
		{Pythagorean, '7', 0},
		{Pythagorean, 'É', 0},
	}
	for _, tt := range tests {
		got, err := ValueOf(tt.system, tt.letter)
		if err != nil {
			t.Fatalf("ValueOf(%s, %q): %v", tt.system, tt.letter, err)
		}
		if got != tt.want {
			t.Errorf("ValueOf(%s, %q) = %d, want %d", tt.system, tt.letter, got, tt.want)
		}
	}
}

func TestValueOf_UnknownSystem(t *testing.T) {
	_, err := ValueOf(System("klingon"), 'A')
	if !IsConfiguration(err) {
		t.Fatalf("ValueOf(klingon) error = %v, want ConfigurationError", err)
	}
}

func TestParseSystem(t *testing.T) {
	tests := map[string]System{
		"pythagorean": Pythagorean,
		" Chaldean ":  Chaldean,
		"KABBALAH":    Kabbalah,
		"kabbalistic": Kabbalah,
	}
	for in, want := range tests {
		got, err := ParseSystem(in)
		if err != nil {
			t.Fatalf("ParseSystem(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseSystem(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseSystem("klingon"); !IsConfiguration(err) {
		t.Errorf("ParseSystem(klingon) error = %v, want ConfigurationError", err)
	}
	if _, err := ParseSystem(""); !IsConfiguration(err) {
		t.Errorf("ParseSystem(\"\") error = %v, want ConfigurationError", err)
	}
}

func TestSplitLetters(t *testing.T) {
	l := splitLetters("  josé   o'Brien-3 ")
	if l.all != "JOSEOBRIEN" {
		t.Errorf("all = %q, want %q", l.all, "JOSEOBRIEN")
	}
	if l.vowels != "OEOIE" {
		t.Errorf("vowels = %q, want %q", l.vowels, "OEOIE")
	}
	if l.consonants != "JSBRN" {
		t.Errorf("consonants = %q, want %q", l.consonants, "JSBRN")
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  John\t  smith "); got != "JOHN SMITH" {
		t.Errorf("NormalizeName = %q, want %q", got, "JOHN SMITH")
	}
	if got := NormalizeName("Zoë"); got != "ZOE" {
		t.Errorf("NormalizeName(Zoë) = %q, want %q", got, "ZOE")
	}
}

// TestLifePath_JohnSmith walks the digits of 1990-05-15 explicitly:
// day 15 -> 1+5 = 6, month 5 -> 5, year 1990 -> 1+9+9+0 = 19 -> 1+9 = 10 -> 1+0 = 1,
// sum 6+5+1 = 12 -> 1+2 = 3.
func TestLifePath_JohnSmith(t *testing.T) {
	d := date(t, "1990-05-15")
	day := Reduce(15)
	if day != 6 {
		t.Fatalf("Reduce(15) = %d, want 6", day)
	}
	year := Reduce(1990)
	if year != 1 {
		t.Fatalf("Reduce(1990) = %d, want 1", year)
	}
	if got := LifePath(d); got != Reduce(day+5+year) || got != 3 {
		t.Errorf("LifePath(1990-05-15) = %d, want 3", got)
	}
}

func TestCalculate_JohnSmithPythagorean(t *testing.T) {
	n, err := Calculate(BirthProfile{FullName: "John Smith", BirthDate: date(t, "1990-05-15")}, Pythagorean)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// J1 O6 H8 N5 + S1 M4 I9 T2 H8 = 44; vowels O6 I9 = 15; consonants 29.
	if n.Trace.NameSum != 44 || n.Trace.VowelSum != 15 || n.Trace.ConsonantSum != 29 {
		t.Fatalf("sums = %d/%d/%d, want 44/15/29", n.Trace.NameSum, n.Trace.VowelSum, n.Trace.ConsonantSum)
	}

	checks := []struct {
		name      string
		got, want int
	}{
		{"life path", n.LifePath, 3},
		{"destiny", n.Destiny, 8},
		{"soul urge", n.SoulUrge, 6},
		{"personality", n.Personality, 11},
		{"birthday", n.Birthday, 6},
		{"maturity", n.Maturity, 11},
		{"challenge", n.Challenge, 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if n.Pinnacles != [4]int{2, 7, 9, 6} {
		t.Errorf("pinnacles = %v, want [2 7 9 6]", n.Pinnacles)
	}
}

func TestCalculate_Systems(t *testing.T) {
	p := BirthProfile{FullName: "JOHN SMITH", BirthDate: date(t, "1990-05-15")}
	tests := []struct {
		system  System
		nameSum int
		destiny int
	}{
		{Pythagorean, 44, 8},
		{Chaldean, 35, 8},
		{Kabbalah, 485, 8},
	}
	for _, tt := range tests {
		n, err := Calculate(p, tt.system)
		if err != nil {
			t.Fatalf("Calculate(%s): %v", tt.system, err)
		}
		if n.Trace.NameSum != tt.nameSum {
			t.Errorf("%s name sum = %d, want %d", tt.system, n.Trace.NameSum, tt.nameSum)
		}
		if n.Destiny != tt.destiny {
			t.Errorf("%s destiny = %d, want %d", tt.system, n.Destiny, tt.destiny)
		}
	}
}

func TestCalculate_MasterDestinyNotReduced(t *testing.T) {
	// D4 A1 V4 I9 D4 = 22.
	n, err := Calculate(BirthProfile{FullName: "David", BirthDate: date(t, "1990-05-15")}, Pythagorean)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if n.Destiny != 22 {
		t.Errorf("destiny = %d, want 22", n.Destiny)
	}
}

func TestCoreNumberHelpers(t *testing.T) {
	destiny, err := Destiny("John Smith", Pythagorean)
	if err != nil || destiny != 8 {
		t.Errorf("Destiny = %d, %v; want 8", destiny, err)
	}
	soul, err := SoulUrge("John Smith", Pythagorean)
	if err != nil || soul != 6 {
		t.Errorf("SoulUrge = %d, %v; want 6", soul, err)
	}
	pers, err := Personality("John Smith", Pythagorean)
	if err != nil || pers != 11 {
		t.Errorf("Personality = %d, %v; want 11", pers, err)
	}
	if got := Birthday(date(t, "1990-05-29")); got != 11 {
		t.Errorf("Birthday(29) = %d, want 11", got)
	}
	if _, err := Destiny("John", System("klingon")); !IsConfiguration(err) {
		t.Errorf("Destiny(klingon) error = %v, want ConfigurationError", err)
	}
}

func TestPersonalCycles(t *testing.T) {
	on := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	got := PersonalCycles(date(t, "1990-05-15"), on)
	// year: 5+15+2026 = 2046 -> 12 -> 3; month: 3+10 = 13 -> 4; day: 4+19 = 23 -> 5.
	want := Cycles{Year: 3, Month: 4, Day: 5}
	if got != want {
		t.Errorf("PersonalCycles = %+v, want %+v", got, want)
	}
}
