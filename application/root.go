// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Identification of Structural VARs with Short- and Long-Run Restrictions
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Allisterh/panel-svar-code-reference/svar"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	LogFormat string // "json" | "text"

	logger *slog.Logger
}

// ValidLogFormats defines the allowed log formats.
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "svar",
		Short:         "Identify structural VAR impact matrices",
		Long:          "Recover M with M*M' = Omega under short-run and long-run zero restrictions.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			switch opts.LogFormat {
			case "text":
				opts.logger = svar.NewTextLogger(level)
			case "json":
				opts.logger = svar.NewJSONLogger(level)
			default:
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidLogFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every solver iteration")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewSolveCommand(opts))
	cmd.AddCommand(NewIRFCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}
