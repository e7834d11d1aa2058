package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/subscription"
	"github.com/abhisek/jambcoach/internal/ui/theme"
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Inspect or record billing state",
}

var subscriptionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show how a user's subscription resolves",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requiredString(cmd, "user")
		if err != nil {
			return err
		}
		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()

		st, err := e.svc.SubscriptionStatus(commandContext(cmd), user)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		state := string(st.State)
		if st.Active() {
			state = theme.Unlocked.Render(state)
		} else {
			state = theme.Locked.Render(state)
		}
		fmt.Fprintln(w, theme.Row("User", user))
		fmt.Fprintln(w, theme.Row("State", state))
		if rec := st.Record; rec != nil {
			fmt.Fprintln(w, theme.Row("Billing status", rec.Status))
			fmt.Fprintln(w, theme.Row("Plan", rec.PlanType))
			fmt.Fprintln(w, theme.Row("Period", formatTime(rec.PeriodStart)+" to "+formatTime(rec.PeriodEnd)))
			fmt.Fprintln(w, theme.Row("Recorded", formatTime(rec.CreatedAt)))
		}
		if st.Err != nil {
			fmt.Fprintln(w, theme.Hint.Render("lookup failed: "+st.Err.Error()))
		}
		return nil
	},
}

var subscriptionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Record a billing status for a user",
	Long:  "Appends a billing record. The most recent record decides the user's state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requiredString(cmd, "user")
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		switch status {
		case subscription.StatusActive, subscription.StatusCanceled,
			subscription.StatusPastDue, subscription.StatusExpired:
		default:
			return fmt.Errorf("unknown status %q (want one of %s)", status, strings.Join([]string{
				subscription.StatusActive, subscription.StatusCanceled,
				subscription.StatusPastDue, subscription.StatusExpired,
			}, ", "))
		}
		plan, _ := cmd.Flags().GetString("plan")
		days, _ := cmd.Flags().GetInt("days")

		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()

		now := time.Now().UTC()
		rec, err := e.st.RecordSubscription(commandContext(cmd), store.SubscriptionRecord{
			UserID:      user,
			Status:      status,
			PlanType:    plan,
			PeriodStart: now,
			PeriodEnd:   now.AddDate(0, 0, days),
		})
		if err != nil {
			return fmt.Errorf("record subscription: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s subscription %s for %s\n", rec.Status, rec.ID, user)
		return nil
	},
}

func init() {
	subscriptionCmd.PersistentFlags().String("user", "", "User id")
	subscriptionSetCmd.Flags().String("status", subscription.StatusActive, "Billing status")
	subscriptionSetCmd.Flags().String("plan", "monthly", "Plan type")
	subscriptionSetCmd.Flags().Int("days", 30, "Billing period length in days")

	subscriptionCmd.AddCommand(subscriptionShowCmd)
	subscriptionCmd.AddCommand(subscriptionSetCmd)
}
