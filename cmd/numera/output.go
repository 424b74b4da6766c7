package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kalambet/numera/internal/numerology"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func numberLine(w io.Writer, label string, n int, meaning string) {
	fmt.Fprintf(w, "  %-13s %s  %s\n", label+":", colorize(colorBold, fmt.Sprintf("%2d", n)), meaning)
}

func joinInts(ns []int) string {
	if len(ns) == 0 {
		return "none"
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func printReading(w io.Writer, r numerology.Reading) {
	fmt.Fprintf(w, "%s  %s  (%s)\n", colorize(colorCyan, r.FullName), r.BirthDate, r.System)
	in := r.Interpretations
	numberLine(w, "Life path", r.LifePath, in.LifePath)
	numberLine(w, "Destiny", r.Destiny, in.Destiny)
	numberLine(w, "Soul urge", r.SoulUrge, in.SoulUrge)
	numberLine(w, "Personality", r.Personality, in.Personality)
	numberLine(w, "Birthday", r.Birthday, in.Birthday)
	numberLine(w, "Maturity", r.Maturity, in.Maturity)
	numberLine(w, "Challenge", r.Challenge, in.Challenge)
	fmt.Fprintf(w, "  %-13s %s\n", "Pinnacles:", joinInts(r.Pinnacles[:]))
	fmt.Fprintf(w, "  %-13s %s\n", "Karmic debt:", joinInts(r.KarmicDebt))
	fmt.Fprintf(w, "  %-13s %s\n", "Master:", joinInts(r.MasterNumbers))
	fmt.Fprintf(w, "  %-13s dominant %d, compatible %s, lucky %s\n", "Summary:",
		r.Summary.Dominant, joinInts(r.Summary.Compatible), joinInts(r.Summary.Lucky))
}

func printCompatibility(w io.Writer, c numerology.CompatibilityResult) {
	fmt.Fprintf(w, "Overall: %s\n", colorize(colorBold, fmt.Sprintf("%d", c.Overall)))
	fmt.Fprintf(w, "  %-13s %d\n", "Life path:", c.LifePath)
	fmt.Fprintf(w, "  %-13s %d\n", "Destiny:", c.Destiny)
	fmt.Fprintf(w, "  %-13s %d\n", "Soul urge:", c.SoulUrge)
	fmt.Fprintf(w, "  %-13s %d\n", "Personality:", c.Personality)
	fmt.Fprintln(w, c.Interpretation)
}
