package numerology

import (
	"fmt"
	"sort"
	"strings"
)

// KarmicMode selects how karmic debt numbers are detected.
type KarmicMode string

const (
	// KarmicLiteral tests each letter's table value against 13, 14, 16
	// and 19. Table values never reach that range for the single-digit
	// systems, so the result is empty for them. This is the default.
	KarmicLiteral KarmicMode = "literal"

	// KarmicCorrected tests the unreduced destiny sum and the unreduced
	// life path values (day, month, year, their reduced sum) along with
	// every intermediate value of their digit reductions.
	KarmicCorrected KarmicMode = "corrected"
)

// ParseKarmicMode resolves a mode name; empty means KarmicLiteral.
func ParseKarmicMode(s string) (KarmicMode, error) {
	switch KarmicMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", KarmicLiteral:
		return KarmicLiteral, nil
	case KarmicCorrected:
		return KarmicCorrected, nil
	}
	return "", fmt.Errorf("unknown karmic mode %q (want %q or %q)", s, KarmicLiteral, KarmicCorrected)
}

// Detect returns the karmic debt numbers found in tr, sorted and unique.
func (m KarmicMode) Detect(tr Trace) []int {
	var found []int
	switch m {
	case KarmicCorrected:
		for _, start := range []int{tr.NameSum, tr.Day, tr.Month, tr.Year, tr.LifePathSum} {
			for _, v := range reductionChain(start) {
				if IsKarmicDebt(v) {
					found = append(found, v)
				}
			}
		}
	default:
		for _, v := range tr.LetterValues {
			if IsKarmicDebt(v) {
				found = append(found, v)
			}
		}
	}
	return uniqueSorted(found)
}

// MasterNumbers checks the unreduced name sum and the unreduced life path
// sum for 11, 22 and 33.
func MasterNumbers(tr Trace) []int {
	var found []int
	for _, v := range []int{tr.NameSum, tr.LifePathSum} {
		if IsMaster(v) {
			found = append(found, v)
		}
	}
	return uniqueSorted(found)
}

// uniqueSorted never returns nil so empty sets encode as [].
func uniqueSorted(in []int) []int {
	out := make([]int, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
