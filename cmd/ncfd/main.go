// Command ncfd is the operator CLI: ingest registry pages, resolve
// sponsors, score trials through the gate & posterior engine, fuse
// catalyst windows, and serve the health/metrics endpoint — mirroring
// the teacher's single cobra root binary with one subcommand per batch
// job.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/daniyal-rahman/ncfd/internal/config"
	"github.com/daniyal-rahman/ncfd/internal/logging"
)

var (
	cfgPath string
	debug   bool
	root    config.Root
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ncfd",
		Short: "Clinical trial risk & catalyst intelligence",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Init(debug)

			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			loaded, err = config.ApplyEnv(loaded, os.Getenv)
			if err != nil {
				return err
			}
			root = loaded
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newIngestCmd(),
		newResolveCmd(),
		newScoreCmd(),
		newCatalystCmd(),
		newReviewCmd(),
		newServeCmd(),
	)
	return cmd
}

func fatal(err error) {
	log.Fatal().Err(err).Msg("command failed")
}
