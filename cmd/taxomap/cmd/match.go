package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/taxomap/pkg/taxomap"
	"github.com/cognicore/taxomap/pkg/taxomap/config"
	"github.com/cognicore/taxomap/pkg/taxomap/match"
	"github.com/cognicore/taxomap/pkg/taxomap/sheet"
	"github.com/cognicore/taxomap/pkg/taxomap/store"
	"github.com/cognicore/taxomap/pkg/taxomap/store/sqlite"
	"github.com/cognicore/taxomap/pkg/taxomap/synonyms"
	"github.com/cognicore/taxomap/pkg/taxomap/taxonomy"
)

type matchOptions struct {
	country       string
	input         string
	taxonomy      string
	synonyms      string
	output        string
	threshold     int
	thresholdSet  bool
	consolidate   bool
	noConsolidate bool
	scores        bool
	db            string
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match semantic carriers against the taxonomy",
		Long: `Match every URL of the semantic carriers file against the taxonomy and
write one row per match (or one consolidated row per segment).

Input files come from config.yaml for the selected country unless --input and
--taxonomy are both given. Use --output - to write TSV to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.thresholdSet = cmd.Flags().Changed("threshold")
			return runMatch(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.country, "country", "c", envOr(envCountry, ""), "Country code (default from config)")
	f.StringVarP(&opts.input, "input", "i", "", "Semantic carriers file (.xlsx, .csv, .tsv)")
	f.StringVarP(&opts.taxonomy, "taxonomy", "t", "", "Taxonomy file (.xlsx, .csv, .tsv)")
	f.StringVar(&opts.synonyms, "synonyms", "", "Synonyms file (.json or .yaml)")
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default from config)")
	f.IntVar(&opts.threshold, "threshold", 0, "Similarity threshold 50-100 (default from config)")
	f.BoolVar(&opts.consolidate, "consolidate", false, "One row per segment with topic columns")
	f.BoolVar(&opts.noConsolidate, "no-consolidate", false, "Force row-per-match output")
	f.BoolVar(&opts.scores, "scores", false, "Add Score and Keyword columns")
	f.StringVar(&opts.db, "db", envOr(envDB, ""), "SQLite database for run history")
	cmd.MarkFlagsMutuallyExclusive("consolidate", "no-consolidate")
	cmd.MarkFlagsMutuallyExclusive("consolidate", "scores")
	return cmd
}

// openStore opens the run history database; tests replace it.
var openStore = func(ctx context.Context, path string) (store.Store, error) {
	return sqlite.OpenSQLite(ctx, path)
}

// runSetup is everything resolved before the pass.
type runSetup struct {
	country      string
	inputPath    string
	taxonomyPath string
	synonyms     *synonyms.Table
	settings     config.Effective
}

func resolveSetup(root *rootOptions, opts *matchOptions) (runSetup, error) {
	setup := runSetup{
		country:  opts.country,
		settings: config.Effective{Threshold: config.DefaultThreshold, OutputFile: config.DefaultOutputFile},
	}

	// With both input files on the command line config.yaml is optional.
	explicit := opts.input != "" && opts.taxonomy != ""
	if _, err := os.Stat(root.configPath); err != nil && explicit {
		root.log.Debug().Str("config", root.configPath).Msg("no config file, using flags only")
	} else {
		loader := config.Loader{ConfigPath: root.configPath, Country: opts.country, Logger: root.log}
		comp, err := loader.Load()
		if err != nil {
			return runSetup{}, err
		}
		setup.country = comp.Country
		setup.inputPath = comp.Files.SemanticCarriers
		setup.taxonomyPath = comp.Files.Taxonomy
		setup.synonyms = comp.Synonyms
		setup.settings = comp.Settings
	}

	if opts.input != "" {
		setup.inputPath = opts.input
	}
	if opts.taxonomy != "" {
		setup.taxonomyPath = opts.taxonomy
	}
	if opts.synonyms != "" {
		table, err := synonyms.LoadFile(opts.synonyms)
		if err != nil {
			return runSetup{}, fmt.Errorf("load synonyms: %w", err)
		}
		setup.synonyms = table
	}
	if opts.thresholdSet {
		setup.settings.Threshold = opts.threshold
	}
	if opts.consolidate {
		setup.settings.Consolidate = true
	}
	if opts.noConsolidate {
		setup.settings.Consolidate = false
	}
	if opts.output != "" {
		setup.settings.OutputFile = opts.output
	}
	if setup.inputPath == "" || setup.taxonomyPath == "" {
		return runSetup{}, errors.New("input and taxonomy files are required")
	}
	if err := taxomap.ValidateThreshold(setup.settings.Threshold); err != nil {
		return runSetup{}, err
	}
	return setup, nil
}

func runMatch(cmd *cobra.Command, root *rootOptions, opts *matchOptions) error {
	ctx := cmd.Context()
	log := root.log

	setup, err := resolveSetup(root, opts)
	if err != nil {
		return err
	}

	log.Info().Str("file", setup.inputPath).Msg("loading semantic carriers")
	input, err := sheet.Read(setup.inputPath)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	records, err := match.RecordsFromTable(input)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}

	log.Info().Str("file", setup.taxonomyPath).Msg("loading taxonomy")
	tax, err := taxonomy.Load(setup.taxonomyPath)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}
	if setup.synonyms != nil {
		s := setup.synonyms.Stats()
		log.Debug().Int("triggers", s.Triggers).Int("synonyms", s.Synonyms).Msg("synonyms loaded")
	}

	var st store.Store
	if opts.db != "" {
		st, err = openStore(ctx, opts.db)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer st.Close()
	}

	engine := taxomap.New(taxomap.Options{
		Taxonomy:    tax,
		Synonyms:    setup.synonyms,
		Threshold:   setup.settings.Threshold,
		Consolidate: setup.settings.Consolidate,
		Country:     setup.country,
		Logger:      log,
		Store:       st,
	})

	// A failed history save still leaves a complete report; write it first.
	report, saveErr := engine.Run(ctx, records)
	if report == nil {
		return saveErr
	}
	if saveErr != nil {
		log.Error().Err(saveErr).Str("run", report.RunID).Msg("run history not saved")
	}

	if opts.scores && report.Consolidated != nil {
		log.Warn().Msg("--scores has no effect on consolidated output")
	}
	out := report.Table(opts.scores)
	if setup.settings.OutputFile == "-" {
		if err := sheet.WriteDelimited(cmd.OutOrStdout(), out, '\t'); err != nil {
			return err
		}
		return saveErr
	}
	if err := sheet.Write(setup.settings.OutputFile, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	abs, _ := filepath.Abs(setup.settings.OutputFile)
	log.Info().Str("file", abs).Int("rows", len(out.Rows)).Str("run", report.RunID).Msg("output saved")
	if report.Stats.UnmappedRecords > 0 {
		log.Warn().Int("unmapped", report.Stats.UnmappedRecords).
			Msgf("filter by Domain=%s to review these URLs", match.UnmappedDomain)
	}
	return saveErr
}
