package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/ui/theme"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Show the question sets a user can open",
	Long:  "Evaluates access for one subject, or summarises every subject when --subject is omitted.",
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
		ctx := commandContext(cmd)
		w := cmd.OutOrStdout()

		subj, _ := cmd.Flags().GetString("subject")
		if subj == "" {
			rows, err := e.svc.SubjectOverview(ctx, user)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%-18s  %-10s  %5s  %10s  %6s\n", "Subject", "Status", "Sets", "Accessible", "Locked")
			fmt.Fprintln(w, strings.Repeat("─", 58))
			for _, r := range rows {
				fmt.Fprintf(w, "%-18s  %-10s  %5d  %10d  %6d\n",
					r.Subject, r.Status, r.Counts.Total, r.Counts.Accessible, r.Counts.Locked)
			}
			return nil
		}

		res, err := e.svc.GetAccessibleSets(ctx, user, subj)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("%s: %s", res.Subject, res.Status)))
		if len(res.Sets) == 0 {
			fmt.Fprintln(w, theme.Hint.Render("No question sets yet."))
			return nil
		}
		fmt.Fprintf(w, "%-36s  %-16s  %9s  %-6s  %s\n", "ID", "Delivered", "Questions", "Access", "Reason")
		fmt.Fprintln(w, strings.Repeat("─", 96))
		for _, sa := range res.Sets {
			reason := string(sa.Reason)
			if sa.IsAnchor {
				reason += " *"
			}
			fmt.Fprintf(w, "%-36s  %-16s  %9d  %s  %s\n",
				sa.Set.ID, formatTime(sa.Set.DeliveredAt), sa.Set.TotalQuestions,
				theme.Access(sa.CanAccess), reason)
		}
		fmt.Fprintf(w, "\n%d of %d accessible (* first set)\n", res.Counts.Accessible, res.Counts.Total)
		return nil
	},
}

func init() {
	setsCmd.Flags().String("user", "", "User id")
	setsCmd.Flags().String("subject", "", "Subject to evaluate")
}
