package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/taxomap/pkg/taxomap/match"
	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
)

const (
	carriersTemplateFile = "semantic_carriers_list_TEMPLATE.xlsx"
	taxonomyTemplateFile = "taxonomy_TEMPLATE.xlsx"
)

func newTemplateCmd(root *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write example input workbooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := []struct {
				name  string
				table sheet.Table
			}{
				{carriersTemplateFile, carriersTemplate()},
				{taxonomyTemplateFile, taxonomyTemplate()},
			}
			for _, f := range files {
				path := filepath.Join(dir, f.name)
				if err := sheet.Write(path, f.table); err != nil {
					return fmt.Errorf("write %s: %w", f.name, err)
				}
				root.log.Info().Str("file", path).Int("rows", len(f.table.Rows)).Msg("template created")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Replace the example rows, then save as the file names listed in config.yaml.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Output directory")
	return cmd
}

func carriersTemplate() sheet.Table {
	header := append([]string{match.ColumnURL, "Title", "Meta Description"}, match.KeywordColumns()...)
	keywords := [][]string{
		{"bankafschriften", "bankrekening", "transacties", "importeren", "verwerking", "banken"},
		{"facturatie", "factuur maken", "klantgegevens", "bedragen", "verzenden", "creditnota"},
		{"btw", "belasting", "aangifte", "periode", "indienen", "fiscaal"},
		{"rapportage", "balans", "financieel", "overzicht", "export", "analyse"},
		{"starten", "setup", "installatie", "configuratie", "gebruikers", "rechten"},
	}
	pages := [][3]string{
		{"https://example.com/help/banking/statements", "Bank Statements Guide", "Learn how to import and process bank statements"},
		{"https://example.com/help/invoicing/create", "Creating Invoices", "Step-by-step guide to create invoices"},
		{"https://example.com/help/vat/filing", "VAT Filing Instructions", "How to file VAT returns correctly"},
		{"https://example.com/help/reports/balance-sheet", "Balance Sheet Reports", "Generate balance sheet reports"},
		{"https://example.com/help/getting-started/setup", "Getting Started with Setup", "Initial setup instructions"},
	}

	t := sheet.Table{Header: header}
	for i, p := range pages {
		row := make([]string, len(header))
		copy(row, p[:])
		copy(row[3:], keywords[i])
		t.Rows = append(t.Rows, row)
	}
	return t
}

func taxonomyTemplate() sheet.Table {
	return sheet.Table{
		Header: []string{"Product", "Productfamily", "Domain", "Segment", "Topic 1", "Topic 2", "Topic 3", "Topic 4", "Topic 5", "Topic 6", "Topic 7"},
		Rows: [][]string{
			{"", "", "Welkom", "Educatie en service", "Wolters Kluwer account", "Consultancy & Services", "Opleidingsaanbod", "Het support portaal", "", "", ""},
			{"", "", "General", "Starten met", "Starten met", "Overstapservice", "Navigatie", "Wizard", "", "", ""},
			{"", "", "Boekhouden", "Bankzaken", "Bankafschriften", "Bankboekingsinstructies", "Bankbetalingen", "Bankkoppeling", "Bankrekeningbeheer", "", ""},
			{"", "", "Boekhouden", "Facturatie", "Verkoopfacturen", "Creditnota", "Facturatieproces", "Factuurnummering", "Factuursjablonen", "Factuurgoedkeuring", ""},
			{"", "", "Boekhouden", "BTW", "BTW-aangifte", "BTW-tarieven", "BTW-schema", "BTW-verlegging", "", "", ""},
		},
	}
}
