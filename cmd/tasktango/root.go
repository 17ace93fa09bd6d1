package main

import (
	"github.com/spf13/cobra"

	"github.com/Raisondetr3/tasktango/internal/config"
	"github.com/Raisondetr3/tasktango/internal/service"
	"github.com/Raisondetr3/tasktango/pkg/logger"
)

type rootOptions struct {
	server string
	cfg    *config.Config

	// clock overrides the store's wall clock when set.
	clock service.Clock
}

func (o *rootOptions) storeOptions() []service.Option {
	if o.clock == nil {
		return nil
	}
	return []service.Option{service.WithClock(o.clock)}
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&rootOptions{})
}

func buildRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tasktango",
		Short: "A todo list that rewards finishing tasks on time",
		Long: `TaskTango keeps a list of tasks with optional due times for today.
Completing a task no later than 15 minutes after its due time, on the same
day, earns one bonus point.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			return logger.SetupLogger(logger.Config{
				Level:    cfg.Logging.Level,
				FilePath: cfg.Logging.FilePath,
				FileName: cfg.Logging.FileName,
			}, serviceName)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", "",
		"gRPC address of a running tasktango server; local storage is used when empty")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newAddCmd(opts),
		newDoneCmd(opts),
		newRmCmd(opts),
		newClearCmd(opts),
		newListCmd(opts),
		newPointsCmd(opts),
	)

	return rootCmd
}
