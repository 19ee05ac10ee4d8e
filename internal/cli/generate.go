package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gantry-dev/gantry/internal/app/gantt"
	"github.com/gantry-dev/gantry/internal/app/shape"
	"github.com/gantry-dev/gantry/internal/domain"
)

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", gantt.DefaultCount, "Number of tasks to generate")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", formatTable, "Output format: table, json or yaml")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "Seed for a reproducible batch (0 = random)")
	rootCmd.AddCommand(generateCmd)
}

var (
	generateCount  int
	generateFormat string
	generateSeed   uint64
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate one batch of synthetic tasks",
	Example: `  gantry generate
  gantry generate -n 20 --format json
  gantry generate --seed 42 --format yaml`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := checkFormat(generateFormat); err != nil {
		return err
	}
	if err := checkCount(generateCount); err != nil {
		return err
	}

	board := gantt.Init(generateCount, gantt.WithSeed(generateSeed))
	return writeBatch(cmd.OutOrStdout(), board.Batch(), generateFormat)
}

func checkCount(n int) error {
	if err := domain.CheckCount(n); err != nil {
		return fmt.Errorf("--count %d: %w", n, err)
	}
	return nil
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("%w: %q (want table, json or yaml)", domain.ErrUnknownFormat, format)
}

// writeBatch prints b in the requested format.
func writeBatch(w io.Writer, b domain.Batch, format string) error {
	switch format {
	case formatJSON:
		return writeJSONDoc(w, b)
	case formatYAML:
		return writeYAMLDoc(w, b)
	case formatTable:
		return writeTaskTable(w, b.Tasks)
	}
	return checkFormat(format)
}

func writeTaskTable(out io.Writer, tasks []domain.GanttTask) error {
	if shape.IsEmpty(tasks) {
		fmt.Fprintln(out, "No tasks generated. Pass --count to ask for some.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tTASK\tSTATUS\tSTART\tEND\tDAYS\tPROGRESS")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			t.ID,
			t.User,
			t.Task,
			t.Status,
			t.Start.Format("2006-01-02 15:04"),
			t.End.Format("2006-01-02 15:04"),
			t.Days(),
			progressBar(t.Progress),
		)
	}
	return w.Flush()
}

func writeJSONDoc(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAMLDoc(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
