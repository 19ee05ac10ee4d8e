package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gantry-dev/gantry/internal/app/gantt"
	"github.com/gantry-dev/gantry/internal/domain"
	"github.com/gantry-dev/gantry/internal/infra/sqlite"
)

func init() {
	summaryCmd.Flags().IntVarP(&summaryCount, "count", "n", gantt.DefaultCount, "Number of tasks to generate")
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", formatTable, "Output format: table, json or yaml")
	summaryCmd.Flags().Uint64Var(&summarySeed, "seed", 0, "Seed for a reproducible batch (0 = random)")
	rootCmd.AddCommand(summaryCmd)
}

var (
	summaryCount  int
	summaryFormat string
	summarySeed   uint64
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate a batch and print counts by status and user",
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	if err := checkFormat(summaryFormat); err != nil {
		return err
	}
	if err := checkCount(summaryCount); err != nil {
		return err
	}

	db, err := sqlite.Open()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	board := gantt.Init(summaryCount, gantt.WithSeed(summarySeed))
	if err := db.ReplaceBatch(board.Batch()); err != nil {
		return fmt.Errorf("load batch: %w", err)
	}

	s, err := db.Summary()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch summaryFormat {
	case formatJSON:
		return writeJSONDoc(out, s)
	case formatYAML:
		return writeYAMLDoc(out, s)
	}
	return writeSummaryTable(out, s)
}

func writeSummaryTable(out io.Writer, s domain.Summary) error {
	fmt.Fprintf(out, "Batch %s: %d tasks, average progress %.1f%%\n\n", s.BatchID, s.Total, s.AvgProgress)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tTASKS")
	for _, st := range domain.Statuses {
		fmt.Fprintf(w, "%s\t%d\n", st, s.ByStatus[st])
	}
	fmt.Fprintln(w, "\t")
	fmt.Fprintln(w, "USER\tTASKS")
	for _, u := range domain.Users {
		fmt.Fprintf(w, "%s\t%d\n", u, s.ByUser[u])
	}
	return w.Flush()
}
