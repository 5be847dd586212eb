package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/avgo/examples/processors"
	"github.com/justyntemme/avgo/pkg/framework/config"
	"github.com/justyntemme/avgo/pkg/framework/debug"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "avinspect",
		Short:        "Inspect and render the example processors",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML host configuration")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newListCmd(),
		newInspectCmd(opts),
		newRenderCmd(opts),
	)
	return root
}

// load reads the host configuration and builds a logger writing to the
// command's error stream.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, *debug.Logger, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, nil, err
		}
	}
	if o.verbose {
		cfg.Log.Level = debug.LogLevelDebug.String()
	}
	logger := cfg.Logger()
	logger.SetOutput(cmd.ErrOrStderr())
	return cfg, logger, nil
}

func lookup(name string) (processors.Entry, error) {
	e, ok := processors.Lookup(name)
	if !ok {
		return processors.Entry{}, fmt.Errorf("unknown processor %q (have %v)", name, processors.Names())
	}
	return e, nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered processors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, e := range processors.All() {
				fmt.Fprintf(w, "%-10s %-30s %-10s %s\n", e.Name, e.Info.ID, e.Info.Category, e.Info.UID())
			}
			return nil
		},
	}
}
