package cmd

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	envConfig  = "TAXOMAP_CONFIG"
	envDB      = "TAXOMAP_DB"
	envCountry = "TAXOMAP_COUNTRY"
)

type rootOptions struct {
	configPath string
	verbose    bool
	quiet      bool

	log zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "taxomap",
		Short:        "Map URLs and their keywords onto a taxonomy",
		Long:         "Fuzzy-match extracted page keywords against a Product > Domain > Segment > Topic taxonomy.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log = newLogger(stderr, opts.verbose, opts.quiet)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", envOr(envConfig, "config.yaml"), "Path to config.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")

	root.AddCommand(newMatchCmd(opts))
	root.AddCommand(newCountriesCmd(opts))
	root.AddCommand(newTemplateCmd(opts))
	root.AddCommand(newRunsCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd(os.Stdout, os.Stderr).Execute()
}

func newLogger(w io.Writer, verbose, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Str("component", "taxomap").
		Logger()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
