package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pathfinder-backend/internal/bootstrap"
	"pathfinder-backend/internal/shared/config"
	"pathfinder-backend/internal/shared/telemetry"
)

type rootOptions struct {
	output  string
	timeout time.Duration
	verbose bool

	build func(ctx context.Context, cfg config.Config) (*bootstrap.App, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&rootOptions{build: bootstrap.BuildServices})
}

func newRootCmdWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pathctl",
		Short:         "Query colleges and generate career roadmaps",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "json", "yaml":
			default:
				return fmt.Errorf("unsupported output %q (want json or yaml)", opts.output)
			}
			if !opts.verbose {
				telemetry.SetLogger(zap.NewNop())
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline for the command")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "emit structured logs to stdout")

	cmd.AddCommand(
		newStatesCmd(opts),
		newDistrictsCmd(opts),
		newSearchCmd(opts),
		newAdviseCmd(opts),
	)
	return cmd
}

// app builds the service graph with a deadline derived from --timeout.
func (o *rootOptions) app(cmd *cobra.Command) (*bootstrap.App, context.Context, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	app, err := o.build(ctx, config.Load())
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return app, ctx, cancel, nil
}
