// Package cli wires the command tree. Each resource gets its own file with
// the flag-to-request plumbing for its actions; the transformation work
// itself lives in the attr, bulk, and resolve packages.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dmar42/nsot/internal/config"
	"github.com/dmar42/nsot/internal/errs"
	"github.com/dmar42/nsot/internal/view"
)

// NewRootCommand builds the root command and attaches every resource
// subcommand to it.
func NewRootCommand(inv *Invocation) *cobra.Command {
	var (
		outputFlag   string
		logLevelFlag string
	)

	cmd := &cobra.Command{
		Use:           "nsot",
		Short:         "Command-line client for the network source of truth",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	// Flag-parse failures are usage failures like any other, so they get
	// the same exit code as a missing required option.
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errs.Usagef("%v", err)
	})

	cmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "Output format. One of: (table | json)")
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level. One of: (debug | info | warn | error)")

	// Renderer and logger depend on flags, so they are bound after parsing.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch outputFlag {
		case "table":
			inv.Renderer = view.NewHuman(inv.Out)
		case "json":
			inv.Renderer = view.NewJSON(inv.Out)
		default:
			return errs.Usagef("invalid output format: %s", outputFlag)
		}
		inv.SetLogger(view.NewLogger(os.Stderr, view.ParseLevel(logLevelFlag), outputFlag))
		return nil
	}

	// Echo every attribute assignment the invocation parsed, for auditing.
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		for _, p := range inv.Log.Pairs() {
			inv.Logger.Debug("parsed attribute", "key", p.Key, "value", p.Value)
		}
	}

	cmd.AddCommand(
		newSitesCommand(inv),
		newDevicesCommand(inv),
		newNetworksCommand(inv),
		newAttributesCommand(inv),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code. Usage failures
// exit 2 the way the flag layer does; everything else exits 1. Users see a
// short message, never a stack trace.
func Execute(args []string) int {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.NoColor = true
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	inv := NewInvocation(cfg, view.NewLogger(os.Stderr, view.ParseLevel("warn"), "text"), os.Stdout)

	root := NewRootCommand(inv)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *errs.UsageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}
	return 0
}
