package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/questiongen"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.json>",
	Short: "Import hand-written question sets",
	Long: `Imports a JSON array of question sets. Each set has a subject, an optional
delivered_at timestamp and a list of questions with topic, question_text,
option_a..option_d, correct_answer, explanation and difficulty. Every question
is validated before anything is written; subjects that already have a set on
the same delivery date are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()
		sets, err := questiongen.ReadSeed(f)
		if err != nil {
			return err
		}

		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()

		results, err := questiongen.NewSeeder(e.st, e.cfg.QuestionGen()).Import(commandContext(cmd), sets)
		w := cmd.OutOrStdout()
		for _, r := range results {
			if r.Skipped {
				fmt.Fprintf(w, "%-18s  %s  skipped (set exists)\n", r.Subject, r.DeliveryDate)
				continue
			}
			fmt.Fprintf(w, "%-18s  %s  %d questions  %s\n", r.Subject, r.DeliveryDate, r.Questions, r.SetID)
		}
		return err
	},
}
