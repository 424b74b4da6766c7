package numerology

import (
	"sort"
	"strings"
)

// System selects a letter value table.
type System string

const (
	Pythagorean System = "pythagorean"
	Chaldean    System = "chaldean"
	Kabbalah    System = "kabbalah"
)

// letterTable maps 'A'..'Z' (index 0..25) to its value.
type letterTable [26]int

var tables = map[System]letterTable{
	Pythagorean: {
		1, 2, 3, 4, 5, 6, 7, 8, 9, // A-I
		1, 2, 3, 4, 5, 6, 7, 8, 9, // J-R
		1, 2, 3, 4, 5, 6, 7, 8, // S-Z
	},
	Chaldean: {
		1, 2, 3, 4, 5, 8, 3, 5, 1, // A-I
		1, 2, 3, 4, 5, 7, 8, 1, 2, // J-R
		3, 4, 6, 6, 6, 5, 1, 7, // S-Z
	},
	Kabbalah: {
		1, 2, 3, 4, 5, 6, 7, 8, 9,
		10, 20, 30, 40, 50, 60, 70, 80, 90,
		100, 200, 300, 400, 500, 600, 700, 800,
	},
}

var aliases = map[string]System{
	"kabbalistic": Kabbalah,
}

// ParseSystem resolves a system identifier, case-insensitively.
func ParseSystem(s string) (System, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := aliases[name]; ok {
		return alias, nil
	}
	sys := System(name)
	if _, ok := tables[sys]; !ok {
		return "", &ConfigurationError{System: s}
	}
	return sys, nil
}

// Systems returns the supported systems in a stable order.
func Systems() []System {
	out := make([]System, 0, len(tables))
	for s := range tables {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s System) table() (*letterTable, error) {
	t, ok := tables[s]
	if !ok {
		return nil, &ConfigurationError{System: string(s)}
	}
	return &t, nil
}

// ValueOf returns the value of letter in the system's table. Characters
// outside 'A'..'Z' (after upper-casing ASCII) map to 0.
func ValueOf(system System, letter rune) (int, error) {
	t, err := system.table()
	if err != nil {
		return 0, err
	}
	return t.value(letter), nil
}

func (t *letterTable) value(r rune) int {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if r < 'A' || r > 'Z' {
		return 0
	}
	return t[r-'A']
}

// sum adds the values of every rune in letters.
func (t *letterTable) sum(letters string) int {
	total := 0
	for _, r := range letters {
		total += t.value(r)
	}
	return total
}
