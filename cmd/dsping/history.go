package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jxucoder/dsping/internal/deepseek"
	"github.com/jxucoder/dsping/internal/history"
	"github.com/jxucoder/dsping/internal/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `List runs recorded with --record, newest first.

The database lives in $DSPING_DATA_DIR (default ~/.dsping).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one recorded run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to show (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.NewStore(cfg.DatabasePath)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	return printRuns(cmd.OutOrStdout(), runs)
}

func printRuns(w io.Writer, runs []*history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No recorded runs. Use --record to keep a history.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tOUTCOME\tHTTP\tSUMMARY")
	for _, run := range runs {
		status := "-"
		if run.HTTPStatus != 0 {
			status = fmt.Sprint(run.HTTPStatus)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Outcome,
			status,
			summarize(run),
		)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	return printRun(cmd.OutOrStdout(), run)
}

// printRun writes every field of a run. API error bodies are re-indented.
func printRun(w io.Writer, run *history.Run) error {
	status := "-"
	if run.HTTPStatus != 0 {
		status = fmt.Sprint(run.HTTPStatus)
	}
	fmt.Fprintf(w, "ID:       %s\n", run.ID)
	fmt.Fprintf(w, "Time:     %s\n", run.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Outcome:  %s\n", run.Outcome)
	fmt.Fprintf(w, "HTTP:     %s\n", status)

	body := run.Content
	if run.Outcome == report.OutcomeAPIError {
		body = (&deepseek.APIError{Body: []byte(run.Detail)}).Pretty()
	} else if body == "" {
		body = run.Detail
	}
	_, err := fmt.Fprintf(w, "\n%s\n", body)
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// summarize returns a single-line excerpt of the run's content or detail.
func summarize(run *history.Run) string {
	s := run.Content
	if s == "" {
		s = run.Detail
	}
	s = strings.Join(strings.Fields(s), " ")
	const maxSummary = 60
	if r := []rune(s); len(r) > maxSummary {
		return string(r[:maxSummary-3]) + "..."
	}
	return s
}
