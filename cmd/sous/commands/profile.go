// ABOUTME: CLI command to view and update a user's nutrition profile
// ABOUTME: Premium profiles with a calorie target personalize assistant answers
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/sous/internal/models"
)

var (
	profileUser         string
	profileName         string
	profileSubscription string
	profileCalories     int
	profileProtein      int
	profileGoal         string
	profilePreferences  []string
	profileAllergies    []string
)

// NewProfileCmd creates profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage user profile",
		Long: `View and manage a user's nutrition profile.

Premium profiles with a daily calorie target are shared with the
assistant so its suggestions fit the user's goals. A fitness goal also
adds a short rationale to search results.

Examples:
  sous profile
  sous profile --user ana --format json
  sous profile set --name "Ana" --subscription premium --calories 2100
  sous profile set --goal build_muscle --protein 140
  sous profile set --preference vegetarian --allergy peanuts`,
		RunE: runProfileShow,
	}

	cmd.PersistentFlags().StringVar(&profileUser, "user", "local", "User id")

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Long: `Update profile fields. List fields are added to, never replaced.

Examples:
  sous profile set --name "Ana"
  sous profile set --goal lose_weight --calories 1800
  sous profile set --allergy shellfish --allergy peanuts`,
		RunE: runProfileSet,
	}

	setCmd.Flags().StringVar(&profileName, "name", "", "Set user name")
	setCmd.Flags().StringVar(&profileSubscription, "subscription", "", "Subscription type (free, premium)")
	setCmd.Flags().IntVar(&profileCalories, "calories", 0, "Daily calorie target")
	setCmd.Flags().IntVar(&profileProtein, "protein", 0, "Daily protein target in grams")
	setCmd.Flags().StringVar(&profileGoal, "goal", "", "Fitness goal (lose_weight, build_muscle, maintain, improve_health)")
	setCmd.Flags().StringArrayVar(&profilePreferences, "preference", nil, "Add a dietary preference (can be repeated)")
	setCmd.Flags().StringArrayVar(&profileAllergies, "allergy", nil, "Add an allergy (can be repeated)")

	cmd.AddCommand(setCmd)

	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	profile, err := a.store.Profiles().Get(cmd.Context(), profileUser)
	if err != nil {
		return fmt.Errorf("getting profile: %w", err)
	}

	if profile == nil {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No profile found. Create one with: sous profile set --name \"Your Name\"\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "-----\t-----\n")
	fmt.Fprintf(w, "User\t%s\n", profile.UserID)
	fmt.Fprintf(w, "Name\t%s\n", orNotSet(profile.Name))
	fmt.Fprintf(w, "Subscription\t%s\n", profile.SubscriptionType)
	fmt.Fprintf(w, "Daily Calories\t%s\n", intOrNotSet(profile.DailyCalories, " kcal"))
	fmt.Fprintf(w, "Protein Target\t%s\n", intOrNotSet(profile.ProteinTarget, " g"))
	fmt.Fprintf(w, "Fitness Goal\t%s\n", orNotSet(profile.FitnessGoal))
	fmt.Fprintf(w, "Preferences\t%s\n", truncate(joinOrNone(profile.DietaryPreferences), 60))
	fmt.Fprintf(w, "Allergies\t%s\n", truncate(joinOrNone(profile.Allergies), 60))
	fmt.Fprintf(w, "Last Updated\t%s\n", formatTime(profile.LastUpdated))
	_ = w.Flush()

	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	updates := profileUpdates(cmd)
	if len(updates) == 0 {
		return fmt.Errorf("no updates specified. Use --name, --subscription, --calories, --protein, --goal, --preference, or --allergy")
	}
	if goal, ok := updates["fitness_goal"].(string); ok && !models.ValidFitnessGoal(goal) {
		return fmt.Errorf("unknown fitness goal %q", goal)
	}
	if sub, ok := updates["subscription_type"].(string); ok && sub != models.SubscriptionFree && sub != models.SubscriptionPremium {
		return fmt.Errorf("unknown subscription type %q", sub)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	profile, err := a.store.Profiles().Get(cmd.Context(), profileUser)
	if err != nil {
		return fmt.Errorf("getting profile: %w", err)
	}
	if profile == nil {
		profile = &models.UserProfile{UserID: profileUser, SubscriptionType: models.SubscriptionFree}
	}

	profile.Merge(updates)

	if err := a.store.Profiles().Save(cmd.Context(), profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Profile updated successfully\n")
	}
	return nil
}

// profileUpdates collects the flags the user actually set
func profileUpdates(cmd *cobra.Command) map[string]interface{} {
	updates := make(map[string]interface{})
	flags := cmd.Flags()
	if flags.Changed("name") {
		updates["name"] = profileName
	}
	if flags.Changed("subscription") {
		updates["subscription_type"] = strings.ToLower(profileSubscription)
	}
	if flags.Changed("calories") {
		updates["daily_calories"] = profileCalories
	}
	if flags.Changed("protein") {
		updates["protein_target"] = profileProtein
	}
	if flags.Changed("goal") {
		updates["fitness_goal"] = profileGoal
	}
	if len(profilePreferences) > 0 {
		updates["dietary_preferences"] = profilePreferences
	}
	if len(profileAllergies) > 0 {
		updates["allergies"] = profileAllergies
	}
	return updates
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func intOrNotSet(n int, unit string) string {
	if n <= 0 {
		return "(not set)"
	}
	return fmt.Sprintf("%d%s", n, unit)
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
