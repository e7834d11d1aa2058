package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/progress"
	"github.com/abhisek/jambcoach/internal/store"
	"github.com/abhisek/jambcoach/internal/ui/theme"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show a user's progress",
	Long:  "Recomputes progress for one subject, or prints the 30-day performance report when --subject is omitted.",
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

		if subj, _ := cmd.Flags().GetString("subject"); subj != "" {
			p, err := e.svc.GetProgress(ctx, user, subj)
			if err != nil {
				return err
			}
			printProgress(cmd.OutOrStdout(), p)
			return nil
		}
		rep, err := e.svc.AnalyzePerformance(ctx, user)
		if err != nil {
			return err
		}
		printPerformance(cmd.OutOrStdout(), rep)
		return nil
	},
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func printProgress(w io.Writer, p store.SubjectProgress) {
	var b strings.Builder
	b.WriteString(theme.Title.Render(p.Subject) + "\n")
	b.WriteString(theme.Row("Attempted", strconv.Itoa(p.TotalAttempted)) + "\n")
	b.WriteString(theme.Row("Correct", strconv.Itoa(p.TotalCorrect)) + "\n")
	b.WriteString(theme.Row("Average", theme.Score(p.AverageScore, pct(p.AverageScore))+"  "+theme.Bar(p.AverageScore, 20)) + "\n")
	b.WriteString(theme.Row("Predicted score", fmt.Sprintf("%d / %d", p.PredictedScore, progress.MaxScore)) + "\n")
	b.WriteString(theme.Row("Weak topics", listOrNone(p.WeakTopics)) + "\n")
	b.WriteString(theme.Row("Strong topics", listOrNone(p.StrongTopics)) + "\n")
	b.WriteString(theme.Row("Last practice", formatTime(p.LastPracticeDate)))
	fmt.Fprintln(w, theme.Card.Render(b.String()))
}

func printPerformance(w io.Writer, rep progress.Report) {
	fmt.Fprintln(w, theme.Title.Render("Last 30 days"))
	if len(rep.Subjects) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No answers in the window."))
	} else {
		fmt.Fprintln(w, theme.Row("Overall", theme.Score(rep.OverallAccuracy, pct(rep.OverallAccuracy))))
		fmt.Fprintln(w, theme.Row("Predicted score", fmt.Sprintf("%d / %d", rep.PredictedScore, progress.MaxScore)))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-18s  %9s  %7s  %8s  %8s\n", "Subject", "Attempted", "Correct", "Accuracy", "Avg time")
		fmt.Fprintln(w, strings.Repeat("─", 60))
		for _, s := range rep.Subjects {
			fmt.Fprintf(w, "%-18s  %9d  %7d  %s  %7ds\n",
				s.Subject, s.TotalQuestions, s.CorrectAnswers,
				theme.Score(s.Accuracy, fmt.Sprintf("%8s", pct(s.Accuracy))),
				s.AverageTimeSeconds)
		}
	}
	if len(rep.WeakTopics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Warning.Render("Needs work"))
		for _, t := range rep.WeakTopics {
			fmt.Fprintf(w, "  %s / %s  %s\n", t.Subject, t.Topic, pct(t.Accuracy))
		}
	}
	if len(rep.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render("Recommendations"))
		for _, r := range rep.Recommendations {
			fmt.Fprintf(w, "  [%s] %s\n", r.Priority, r.Message)
		}
	}
}

func init() {
	progressCmd.Flags().String("user", "", "User id")
	progressCmd.Flags().String("subject", "", "Subject to recompute")
}
