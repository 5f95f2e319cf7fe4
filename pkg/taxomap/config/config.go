package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
)

const (
	DefaultCountryCode = "NL"
	DefaultThreshold   = 80
	DefaultOutputFile  = "taxonomy_match.xlsx"

	defaultSemanticFile = "semantic_carriers_list.xlsx"
	defaultTaxonomyFile = "taxonomy.xlsx"
	defaultSynonymsFile = "synonyms.json"

	// CountriesDir holds one directory per country code below the root.
	CountriesDir = "countries"
)

// Config mirrors config.yaml.
type Config struct {
	DefaultCountryCode string                `yaml:"default_country"`
	Global             Settings              `yaml:"global_settings"`
	Legacy             BackwardCompatibility `yaml:"backward_compatibility"`
	Countries          map[string]Country    `yaml:"countries"`
}

// Settings are optional run settings. Nil fields inherit from the level above.
type Settings struct {
	SimilarityThreshold *int   `yaml:"similarity_threshold,omitempty"`
	Consolidate         *bool  `yaml:"consolidate,omitempty"`
	OutputFile          string `yaml:"output_file,omitempty"`
}

// BackwardCompatibility describes the pre-country NL layout where both input
// workbooks lived next to config.yaml.
type BackwardCompatibility struct {
	CheckRootForLegacy bool   `yaml:"check_root_for_legacy"`
	LegacySemanticFile string `yaml:"legacy_semantic_file"`
	LegacyTaxonomyFile string `yaml:"legacy_taxonomy_file"`
}

// Country is one entry under countries.
type Country struct {
	Name     string       `yaml:"name"`
	Language string       `yaml:"language"`
	Enabled  *bool        `yaml:"enabled,omitempty"`
	Files    CountryFiles `yaml:"files"`
	Settings Settings     `yaml:"settings"`
}

// IsEnabled reports whether the country is selectable. Countries are enabled
// unless switched off explicitly.
func (c Country) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// CountryFiles are file names relative to the country directory.
type CountryFiles struct {
	SemanticCarriers string `yaml:"semantic_carriers"`
	Taxonomy         string `yaml:"taxonomy"`
	Synonyms         string `yaml:"synonyms"`
}

// Files are resolved paths for one country.
type Files struct {
	SemanticCarriers string
	Taxonomy         string
	Synonyms         string
	Legacy           bool
}

// Effective is the merged result of global and country settings.
type Effective struct {
	Threshold   int
	Consolidate bool
	OutputFile  string
}

// CountryInfo is a summary row for country listings.
type CountryInfo struct {
	Code     string
	Name     string
	Language string
}

// Load reads and validates a config.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file %s", internalerr.ErrNotFound, path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes config.yaml content.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if len(cfg.Countries) == 0 {
		return nil, fmt.Errorf("%w: no countries defined", internalerr.ErrInvalidConfig)
	}
	return &cfg, nil
}

// DefaultCountry returns the configured default country code.
func (c *Config) DefaultCountry() string {
	if c.DefaultCountryCode == "" {
		return DefaultCountryCode
	}
	return c.DefaultCountryCode
}

// AvailableCountries lists enabled countries ordered by code.
func (c *Config) AvailableCountries() []CountryInfo {
	out := make([]CountryInfo, 0, len(c.Countries))
	for code, country := range c.Countries {
		if !country.IsEnabled() {
			continue
		}
		out = append(out, CountryInfo{Code: code, Name: country.Name, Language: country.Language})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Country returns the entry for code.
func (c *Config) Country(code string) (Country, error) {
	country, ok := c.Countries[code]
	if !ok {
		return Country{}, fmt.Errorf("%w: country %q", internalerr.ErrNotFound, code)
	}
	return country, nil
}

// CountryFiles resolves the input files of a country below root. For NL the
// legacy workbooks in root win when both exist; synonyms always come from the
// country directory.
func (c *Config) CountryFiles(root, code string) (Files, error) {
	country, err := c.Country(code)
	if err != nil {
		return Files{}, err
	}

	dir := filepath.Join(root, CountriesDir, code)
	files := Files{
		SemanticCarriers: filepath.Join(dir, orDefault(country.Files.SemanticCarriers, defaultSemanticFile)),
		Taxonomy:         filepath.Join(dir, orDefault(country.Files.Taxonomy, defaultTaxonomyFile)),
		Synonyms:         filepath.Join(dir, orDefault(country.Files.Synonyms, defaultSynonymsFile)),
	}

	if code == DefaultCountryCode && c.Legacy.CheckRootForLegacy &&
		c.Legacy.LegacySemanticFile != "" && c.Legacy.LegacyTaxonomyFile != "" {
		semantic := filepath.Join(root, c.Legacy.LegacySemanticFile)
		tax := filepath.Join(root, c.Legacy.LegacyTaxonomyFile)
		if exists(semantic) && exists(tax) {
			files.SemanticCarriers = semantic
			files.Taxonomy = tax
			files.Legacy = true
		}
	}
	return files, nil
}

// Settings merges global settings with the country's overrides.
func (c *Config) Settings(code string) (Effective, error) {
	country, err := c.Country(code)
	if err != nil {
		return Effective{}, err
	}
	eff := Effective{Threshold: DefaultThreshold, OutputFile: DefaultOutputFile}
	eff.apply(c.Global)
	eff.apply(country.Settings)
	return eff, nil
}

func (e *Effective) apply(s Settings) {
	if s.SimilarityThreshold != nil {
		e.Threshold = *s.SimilarityThreshold
	}
	if s.Consolidate != nil {
		e.Consolidate = *s.Consolidate
	}
	if s.OutputFile != "" {
		e.OutputFile = s.OutputFile
	}
}

// ValidateCountryFiles returns the required files that are missing, formatted
// as "kind: path". The synonyms file is optional.
func (c *Config) ValidateCountryFiles(root, code string) ([]string, error) {
	files, err := c.CountryFiles(root, code)
	if err != nil {
		return nil, err
	}
	var missing []string
	if !exists(files.SemanticCarriers) {
		missing = append(missing, "semantic_carriers: "+files.SemanticCarriers)
	}
	if !exists(files.Taxonomy) {
		missing = append(missing, "taxonomy: "+files.Taxonomy)
	}
	return missing, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
