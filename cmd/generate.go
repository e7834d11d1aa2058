package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/questiongen"
	"github.com/abhisek/jambcoach/internal/subject"
	"github.com/abhisek/jambcoach/internal/ui/theme"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one question generation cycle now",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()

		gc := e.cfg.QuestionGen()
		if subs, _ := cmd.Flags().GetStringSlice("subject"); len(subs) > 0 {
			gc.Subjects = gc.Subjects[:0]
			for _, s := range subs {
				if c := subject.Canonical(s); c != "" {
					gc.Subjects = append(gc.Subjects, c)
				}
			}
		}
		if n, _ := cmd.Flags().GetInt("count"); n > 0 {
			gc.QuestionsPerSubject = n
		}

		job, err := newJob(cmd, gc, e)
		if err != nil {
			return err
		}
		rep, err := job.Run(commandContext(cmd))
		printReport(cmd.OutOrStdout(), rep)
		if err != nil {
			return fmt.Errorf("generation interrupted: %w", err)
		}
		if len(rep.Failed()) > 0 {
			return fmt.Errorf("%d subject(s) failed", len(rep.Failed()))
		}
		return nil
	},
}

func printReport(w io.Writer, rep questiongen.Report) {
	fmt.Fprintln(w, theme.Title.Render("Generation for "+rep.DeliveryDate))
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-18s  %-8s  %9s  %8s  %s\n", "Subject", "Result", "Questions", "Rejected", "Topics")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, r := range rep.Results {
		result := theme.Unlocked.Render(fmt.Sprintf("%-8s", "created"))
		switch {
		case r.Skipped:
			result = theme.Hint.Render(fmt.Sprintf("%-8s", "skipped"))
		case r.Err != nil:
			result = theme.Locked.Render(fmt.Sprintf("%-8s", "failed"))
		}
		topics := strings.Join(r.Topics, ", ")
		if r.FallbackTopics {
			topics += " (fallback)"
		}
		fmt.Fprintf(w, "%-18s  %s  %9d  %8d  %s\n", r.Subject, result, r.Questions, r.Rejected, topics)
		if r.Err != nil {
			fmt.Fprintln(w, theme.Hint.Render("    "+r.Err.Error()))
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%d created, %d failed in %s\n", len(rep.Generated()), len(rep.Failed()), rep.Duration.Round(time.Millisecond))
}

func init() {
	generateCmd.Flags().StringSlice("subject", nil, "Generate only these subjects")
	generateCmd.Flags().Int("count", 0, "Questions per subject (overrides JAMBCOACH_QUESTIONS_PER_SUBJECT)")
}
