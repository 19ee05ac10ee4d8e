package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-dev/gantry/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().IntVarP(&serveCount, "count", "n", -1, "Tasks per batch (overrides config)")
	serveCmd.Flags().Uint64Var(&serveSeed, "seed", 0, "Seed for reproducible batches (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost  string
	servePort  int
	serveCount int
	serveSeed  uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gantry API server",
	Long: `Start the HTTP API at localhost:3000.
The live board regenerates on POST /v1/tasks/regenerate and streams every new
batch on /v1/tasks/events.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if cmd.Flags().Changed("count") {
		cfg.Generator.Count = serveCount
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generator.Seed = serveSeed
	}
	if err := checkCount(cfg.Generator.Count); err != nil {
		return err
	}

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Serve(cmd.Context())
}
