package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-dev/gantry/internal/app/gantt"
	"github.com/gantry-dev/gantry/internal/daemon"
	"github.com/gantry-dev/gantry/internal/tui"
)

func init() {
	viewCmd.Flags().IntVarP(&viewCount, "count", "n", gantt.DefaultCount, "Tasks per batch (overrides config)")
	viewCmd.Flags().Uint64Var(&viewSeed, "seed", 0, "Seed for reproducible batches (overrides config)")
	rootCmd.AddCommand(viewCmd)
}

var (
	viewCount int
	viewSeed  uint64
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse a live board as a terminal Gantt chart",
	Long:  `Open an interactive chart. Press r to regenerate, ? for keys, q to quit.`,
	RunE:  runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("count") {
		cfg.Generator.Count = viewCount
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generator.Seed = viewSeed
	}
	if err := checkCount(cfg.Generator.Count); err != nil {
		return err
	}

	board := gantt.Init(cfg.Generator.Count, gantt.WithSeed(cfg.Generator.Seed))
	return tui.Run(board)
}
