package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/numera/internal/config"
	"github.com/kalambet/numera/internal/profile"
	"github.com/kalambet/numera/internal/storage"
)

// --- readings ---

var readingsCmd = &cobra.Command{
	Use:   "readings",
	Short: "Manage saved readings",
}

var readingsSaveCmd = &cobra.Command{
	Use:   "save <full name>",
	Short: "Compute a reading on the server and save it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		system, _ := cmd.Flags().GetString("system")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/readings", map[string]any{
			"full_name":  strings.Join(args, " "),
			"birth_date": date,
			"system":     system,
			"save":       true,
		})
		if err != nil {
			return err
		}

		var saved profile.SavedReading
		if err := decodeJSON(resp, &saved); err != nil {
			return err
		}

		printReading(cmd.OutOrStdout(), saved.Reading)
		printSuccess("Saved reading %s", saved.ID)
		return nil
	},
}

var readingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		profileID, _ := cmd.Flags().GetString("profile")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		q.Set("limit", fmt.Sprintf("%d", limit))
		if profileID != "" {
			q.Set("profile_id", profileID)
		}
		resp, err := client.get(cmd.Context(), "/readings?"+q.Encode())
		if err != nil {
			return err
		}

		var readings []profile.SavedReading
		if err := decodeJSON(resp, &readings); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(readings) == 0 {
			fmt.Fprintln(w, "No saved readings.")
			return nil
		}
		for _, r := range readings {
			fmt.Fprintf(w, "%s  %s  %-11s  LP %d  D %d  %s\n",
				colorize(colorCyan, shortID(r.ID)),
				r.SavedAt.Format("2006-01-02 15:04"),
				r.System,
				r.LifePath,
				r.Destiny,
				r.FullName,
			)
		}
		return nil
	},
}

var readingsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved reading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/readings/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}

		var saved profile.SavedReading
		if err := decodeJSON(resp, &saved); err != nil {
			return err
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), saved)
		}
		printReading(cmd.OutOrStdout(), saved.Reading)
		return nil
	},
}

var readingsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved reading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/readings/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}

		printSuccess("Deleted reading %s", args[0])
		return nil
	},
}

func init() {
	readingsSaveCmd.Flags().String("date", "", "birth date (YYYY-MM-DD)")
	readingsSaveCmd.Flags().String("system", "", "letter system (default from server config)")
	_ = readingsSaveCmd.MarkFlagRequired("date")
	readingsListCmd.Flags().Int("limit", 20, "maximum number of readings to list")
	readingsListCmd.Flags().String("profile", "", "only list readings of this profile")
	readingsShowCmd.Flags().Bool("json", false, "print the reading as JSON")

	readingsCmd.AddCommand(readingsSaveCmd)
	readingsCmd.AddCommand(readingsListCmd)
	readingsCmd.AddCommand(readingsShowCmd)
	readingsCmd.AddCommand(readingsDeleteCmd)
}

// --- profiles ---

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage stored birth profiles",
}

var profilesAddCmd = &cobra.Command{
	Use:   "add <full name>",
	Short: "Store a birth profile",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/profiles", map[string]string{
			"full_name":  strings.Join(args, " "),
			"birth_date": date,
		})
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		printSuccess("Created profile %s", p.ID)
		return nil
	},
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/profiles?limit=%d", limit))
		if err != nil {
			return err
		}

		var profiles []profile.Profile
		if err := decodeJSON(resp, &profiles); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(profiles) == 0 {
			fmt.Fprintln(w, "No profiles found.")
			return nil
		}
		for _, p := range profiles {
			fmt.Fprintf(w, "%s  %s  %s\n", colorize(colorCyan, shortID(p.ID)), p.BirthDate, p.FullName)
		}
		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profiles/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var profilesReadingCmd = &cobra.Command{
	Use:   "reading <id>",
	Short: "Compute and save a reading for a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		system, _ := cmd.Flags().GetString("system")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		var body any
		if system != "" {
			body = map[string]string{"system": system}
		}
		resp, err := client.post(cmd.Context(), "/profiles/"+url.PathEscape(args[0])+"/reading", body)
		if err != nil {
			return err
		}

		var saved profile.SavedReading
		if err := decodeJSON(resp, &saved); err != nil {
			return err
		}

		printReading(cmd.OutOrStdout(), saved.Reading)
		printSuccess("Saved reading %s", saved.ID)
		return nil
	},
}

var profilesCompatCmd = &cobra.Command{
	Use:   "compat <id> <other-id>",
	Short: "Score the compatibility of two stored profiles",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		system, _ := cmd.Flags().GetString("system")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/profiles/" + url.PathEscape(args[0]) + "/compatibility/" + url.PathEscape(args[1])
		if system != "" {
			path += "?system=" + url.QueryEscape(system)
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var result struct {
			Overall        int    `json:"overall"`
			LifePath       int    `json:"life_path"`
			Destiny        int    `json:"destiny"`
			SoulUrge       int    `json:"soul_urge"`
			Personality    int    `json:"personality"`
			Interpretation string `json:"interpretation"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored profile and its readings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/profiles/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}

		printSuccess("Deleted profile %s", args[0])
		return nil
	},
}

func init() {
	profilesAddCmd.Flags().String("date", "", "birth date (YYYY-MM-DD)")
	_ = profilesAddCmd.MarkFlagRequired("date")
	profilesListCmd.Flags().Int("limit", 20, "maximum number of profiles to list")
	profilesReadingCmd.Flags().String("system", "", "letter system (default from server config)")
	profilesCompatCmd.Flags().String("system", "", "letter system (default from server config)")

	profilesCmd.AddCommand(profilesAddCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesReadingCmd)
	profilesCmd.AddCommand(profilesCompatCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daily calculation counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/stats?days=%d", days))
		if err != nil {
			return err
		}

		var tallies []storage.Tally
		if err := decodeJSON(resp, &tallies); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(tallies) == 0 {
			fmt.Fprintln(w, "No calculations recorded.")
			return nil
		}
		for _, t := range tallies {
			fmt.Fprintf(w, "%s  %-13s  %-11s  %6d  (%d cached)\n", t.Day, t.Kind, t.System, t.Computations, t.CacheHits)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("days", 7, "number of days to show, including today")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
