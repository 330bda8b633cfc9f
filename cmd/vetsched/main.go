package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavshah/vetclinic-scheduler-api/internal/config"
	"github.com/arnavshah/vetclinic-scheduler-api/internal/logging"
)

// cli carries state shared by every subcommand
type cli struct {
	cfg      *config.Config
	logger   *zap.Logger
	logLevel string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "vetsched",
		Short: "Vet clinic appointment scheduler",
		Long:  "Rank appointment times for a veterinary visit from a JSON description of the clinic's schedule and roster.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	root.AddCommand(newSuggestCmd(c), newPoliciesCmd())
	return root
}

// load reads configuration (called before every command)
func (c *cli) load() error {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	logger, err := logging.New("development", level)
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, logger
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
