package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/numera/internal/config"
	"github.com/kalambet/numera/internal/numerology"
)

// localEngine builds an uncached engine from the loaded configuration.
// karmic overrides the configured karmic mode when non-empty.
func localEngine(karmic string) (*numerology.Engine, numerology.System, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	if karmic == "" {
		karmic = cfg.Engine.KarmicMode
	}
	mode, err := numerology.ParseKarmicMode(karmic)
	if err != nil {
		return nil, "", err
	}
	sys, err := numerology.ParseSystem(cfg.Engine.DefaultSystem)
	if err != nil {
		return nil, "", err
	}
	eng := numerology.NewEngine(numerology.EngineConfig{
		KarmicMode:   mode,
		MinBirthYear: cfg.Engine.MinBirthYear,
	})
	return eng, sys, nil
}

// resolveSystem returns def for an empty flag. Unknown names are passed
// through so the engine reports input errors before system errors.
func resolveSystem(flag string, def numerology.System) numerology.System {
	if flag == "" {
		return def
	}
	if sys, err := numerology.ParseSystem(flag); err == nil {
		return sys
	}
	return numerology.System(flag)
}

// --- reading ---

var readingCmd = &cobra.Command{
	Use:   "reading <full name>",
	Short: "Compute a numerology reading",
	Long: `Compute a full numerology reading for a name and birth date.

Examples:
  numera reading John Smith --date 1990-05-15
  numera reading "Anna Maria" --date 1985-11-29 --system chaldean --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		system, _ := cmd.Flags().GetString("system")
		karmic, _ := cmd.Flags().GetString("karmic")
		asJSON, _ := cmd.Flags().GetBool("json")

		eng, def, err := localEngine(karmic)
		if err != nil {
			return err
		}
		d, err := numerology.ParseBirthDate(date)
		if err != nil {
			return err
		}
		reading, err := eng.ComputeReading(cmd.Context(), strings.Join(args, " "), d, resolveSystem(system, def))
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), reading)
		}
		printReading(cmd.OutOrStdout(), reading)
		return nil
	},
}

func init() {
	readingCmd.Flags().String("date", "", "birth date (YYYY-MM-DD)")
	readingCmd.Flags().String("system", "", "letter system (pythagorean, chaldean, kabbalah)")
	readingCmd.Flags().String("karmic", "", "karmic debt detection (literal, corrected)")
	readingCmd.Flags().Bool("json", false, "print the reading as JSON")
	_ = readingCmd.MarkFlagRequired("date")
}

// --- compat ---

var compatCmd = &cobra.Command{
	Use:   "compat",
	Short: "Score the compatibility of two people",
	Long: `Score the numerology compatibility of two people.

Example:
  numera compat --name-a "John Smith" --date-a 1990-05-15 --name-b "Jane Doe" --date-b 1992-03-08`,
	RunE: func(cmd *cobra.Command, args []string) error {
		system, _ := cmd.Flags().GetString("system")
		asJSON, _ := cmd.Flags().GetBool("json")

		var people [2]numerology.BirthProfile
		for i, side := range []string{"a", "b"} {
			name, _ := cmd.Flags().GetString("name-" + side)
			date, _ := cmd.Flags().GetString("date-" + side)
			d, err := numerology.ParseBirthDate(date)
			if err != nil {
				return fmt.Errorf("person %s: %w", side, err)
			}
			people[i] = numerology.BirthProfile{FullName: name, BirthDate: d}
		}

		eng, def, err := localEngine("")
		if err != nil {
			return err
		}
		result, err := eng.ComputeCompatibility(cmd.Context(), people[0], people[1], resolveSystem(system, def))
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printCompatibility(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	for _, side := range []string{"a", "b"} {
		compatCmd.Flags().String("name-"+side, "", "full name of person "+side)
		compatCmd.Flags().String("date-"+side, "", "birth date of person "+side+" (YYYY-MM-DD)")
		_ = compatCmd.MarkFlagRequired("name-" + side)
		_ = compatCmd.MarkFlagRequired("date-" + side)
	}
	compatCmd.Flags().String("system", "", "letter system (pythagorean, chaldean, kabbalah)")
	compatCmd.Flags().Bool("json", false, "print the result as JSON")
}

// --- cycles ---

// now is swapped in tests.
var now = time.Now

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Show personal year, month and day numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		onFlag, _ := cmd.Flags().GetString("on")
		asJSON, _ := cmd.Flags().GetBool("json")

		birth, err := numerology.ParseBirthDate(date)
		if err != nil {
			return err
		}
		on := now().UTC()
		if onFlag != "" {
			if on, err = numerology.ParseBirthDate(onFlag); err != nil {
				return fmt.Errorf("--on must be a YYYY-MM-DD date")
			}
		}
		c := numerology.PersonalCycles(birth, on)

		if asJSON {
			return printJSON(cmd.OutOrStdout(), c)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Cycles on %s\n", on.Format(numerology.DateLayout))
		fmt.Fprintf(w, "  %-15s %d\n", "Personal year:", c.Year)
		fmt.Fprintf(w, "  %-15s %d\n", "Personal month:", c.Month)
		fmt.Fprintf(w, "  %-15s %d\n", "Personal day:", c.Day)
		return nil
	},
}

func init() {
	cyclesCmd.Flags().String("date", "", "birth date (YYYY-MM-DD)")
	cyclesCmd.Flags().String("on", "", "day to compute for (default today)")
	cyclesCmd.Flags().Bool("json", false, "print the cycles as JSON")
	_ = cyclesCmd.MarkFlagRequired("date")
}

// --- interpret ---

var interpretCmd = &cobra.Command{
	Use:   "interpret <category> <number>",
	Short: "Look up the meaning of a number",
	Long: `Look up the meaning of a number in an interpretation category.

Categories: life_path, destiny, soul_urge, personality, birthday, maturity,
challenge, pinnacle, karmic_debt, master_number and compatibility.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("number must be a non-negative integer")
		}
		if strings.EqualFold(args[0], "compatibility") {
			fmt.Fprintln(cmd.OutOrStdout(), numerology.CompatibilityBand(n))
			return nil
		}
		cat, err := numerology.ParseCategory(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), numerology.Interpret(cat, n))
		return nil
	},
}
