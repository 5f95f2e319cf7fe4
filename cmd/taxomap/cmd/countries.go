package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/taxomap/pkg/taxomap/config"
)

func newCountriesCmd(root *rootOptions) *cobra.Command {
	var dataRoot string
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List enabled countries and check their input files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dataRoot == "" {
				dataRoot = filepath.Dir(root.configPath)
			}

			def := cfg.DefaultCountry()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tLANGUAGE\tSTATUS")
			for _, c := range cfg.AvailableCountries() {
				missing, err := cfg.ValidateCountryFiles(dataRoot, c.Code)
				if err != nil {
					return err
				}
				status := "ok"
				if len(missing) > 0 {
					status = fmt.Sprintf("%d missing", len(missing))
				}
				code := c.Code
				if code == def {
					code += "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", code, c.Name, c.Language, status)
				for _, m := range missing {
					root.log.Warn().Str("country", c.Code).Msg("missing " + m)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dataRoot, "root", "", "Directory holding countries/ (default: config directory)")
	return cmd
}
