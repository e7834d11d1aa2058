package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()

		// Fetch everything when filtering so the limit applies after it.
		fetch := limit
		if purpose != "" {
			fetch = 0
		}
		events, err := e.st.ListLLMEvents(commandContext(cmd), fetch)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No LLM events found.")
			return nil
		}

		fmt.Fprintf(w, "%-5s  %-19s  %-12s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(w, strings.Repeat("─", 98))

		shown := 0
		for _, ev := range events {
			if purpose != "" && ev.Purpose != purpose {
				continue
			}
			if limit > 0 && shown == limit {
				break
			}
			shown++
			ok := "✓"
			if !ev.Success {
				ok = "✗"
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-12s  %-28s  %-6d  %-6d  %-7d  %s\n",
				ev.ID,
				ev.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				ev.Purpose,
				truncate(ev.Model, 28),
				ev.InputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()

		ev, err := e.st.GetLLMEvent(commandContext(cmd), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("event %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		w := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)
		fmt.Fprintf(w, "ID:        %d\n", ev.ID)
		fmt.Fprintf(w, "Time:      %s\n", ev.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Provider:  %s\n", ev.Provider)
		fmt.Fprintf(w, "Model:     %s\n", ev.Model)
		fmt.Fprintf(w, "Purpose:   %s\n", ev.Purpose)
		fmt.Fprintf(w, "Tokens:    %d in / %d out\n", ev.InputTokens, ev.OutputTokens)
		fmt.Fprintf(w, "Latency:   %dms\n", ev.LatencyMs)
		fmt.Fprintf(w, "Success:   %v\n", ev.Success)
		if ev.ErrorMessage != "" {
			fmt.Fprintf(w, "Error:     %s\n", ev.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", ev.RequestBody},
			{"RESPONSE", ev.ResponseBody},
		} {
			fmt.Fprintln(w)
			fmt.Fprintln(w, sep)
			fmt.Fprintln(w, part.title)
			fmt.Fprintln(w, sep)
			if part.body == "" {
				fmt.Fprintln(w, "(not captured)")
			} else {
				fmt.Fprintln(w, part.body)
			}
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()

		usage, err := e.st.LLMUsage(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		w := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(w, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintf(w, "%-14s  %-28s  %6s  %6s  %10s  %10s  %8s\n",
			"Purpose", "Model", "Calls", "Failed", "Input", "Output", "Avg Ms")
		fmt.Fprintln(w, strings.Repeat("─", 92))
		var calls, failed, in, out int
		for _, u := range usage {
			fmt.Fprintf(w, "%-14s  %-28s  %6d  %6d  %10d  %10d  %8d\n",
				u.Purpose, truncate(u.Model, 28), u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			failed += u.Failures
			in += u.InputTokens
			out += u.OutputTokens
		}
		fmt.Fprintln(w, strings.Repeat("─", 92))
		fmt.Fprintf(w, "%-14s  %-28s  %6d  %6d  %10d  %10d\n", "TOTAL", "", calls, failed, in, out)
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (topic-gen, question-gen)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
