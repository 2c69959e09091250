package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	metrics    string
}

// load applies the flags over the config file.
func (opts *rootOptions) load() (*Config, error) {
	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if len(opts.logLevel) > 0 {
		cfg.Log.Level = opts.logLevel
	}
	if len(opts.metrics) > 0 {
		cfg.Metrics.Exporter = opts.metrics
	}
	cfg.Normalize()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// appCommand runs fn inside the app with the loaded config.
func (opts *rootOptions) appCommand(fn func(cmd *cobra.Command, args []string, deps appDeps) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := opts.load()
		if err != nil {
			return err
		}
		return runApp(cmd.Context(), cfg, cmd.OutOrStdout(), func(deps appDeps) error {
			return fn(cmd, args, deps)
		})
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "xtree",
		Short:         "Ordered binary trees (BST, AVL) and a random shape tree demo",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "yaml config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.metrics, "metrics", "", fmt.Sprintf("metrics exporter: %v", allExporters))

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "demo",
			Short: "Insert, walk, search and delete the demo words in every configured tree kind",
			Args:  cobra.NoArgs,
			RunE:  opts.appCommand(runDemo),
		},
		&cobra.Command{
			Use:   "walk [keys...]",
			Short: "Print the walks of the trees built from the keys (or the config keys)",
			RunE:  opts.appCommand(runWalk),
		},
		&cobra.Command{
			Use:   "random",
			Short: "Insert random lowercase keys and validate the trees",
			Args:  cobra.NoArgs,
			RunE:  opts.appCommand(runRandom),
		},
		newCheckCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print xtree version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return rootCmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	ops := 0
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a random insert/delete workload and fail on any tree rule violation",
		Args:  cobra.NoArgs,
		RunE: opts.appCommand(func(cmd *cobra.Command, args []string, deps appDeps) error {
			return runCheck(deps, ops)
		}),
	}
	cmd.Flags().IntVar(&ops, "ops", 10_000, "number of insert/delete operations per tree")
	return cmd
}
