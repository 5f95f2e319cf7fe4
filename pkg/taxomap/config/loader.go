package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cognicore/taxomap/pkg/taxomap/synonyms"
)

// Loader resolves a country from config.yaml and loads its synonym table.
type Loader struct {
	ConfigPath string
	Root       string // defaults to the directory of ConfigPath
	Country    string // defaults to the configured default country
	Logger     zerolog.Logger
}

// Components holds everything a run needs from configuration.
type Components struct {
	Config   *Config
	Country  string
	Info     Country
	Files    Files
	Settings Effective
	Synonyms *synonyms.Table
}

// Load reads the config and builds components for the selected country.
func (l *Loader) Load() (*Components, error) {
	cfg, err := Load(l.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	root := l.Root
	if root == "" {
		root = filepath.Dir(l.ConfigPath)
	}
	code := l.Country
	if code == "" {
		code = cfg.DefaultCountry()
	}

	info, err := cfg.Country(code)
	if err != nil {
		return nil, err
	}
	files, err := cfg.CountryFiles(root, code)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Settings(code)
	if err != nil {
		return nil, err
	}

	comp := &Components{
		Config:   cfg,
		Country:  code,
		Info:     info,
		Files:    files,
		Settings: settings,
		Synonyms: l.loadSynonyms(code, files.Synonyms),
	}
	if files.Legacy {
		l.Logger.Info().Str("country", code).Msg("using legacy input files from root")
	}
	return comp, nil
}

// loadSynonyms never fails: a missing or malformed file degrades to an empty table.
func (l *Loader) loadSynonyms(code, path string) *synonyms.Table {
	table, err := synonyms.LoadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.Logger.Warn().Str("country", code).Str("path", path).Msg("synonyms file not found, using empty table")
		return synonyms.New(nil)
	case err != nil:
		l.Logger.Warn().Err(err).Str("country", code).Str("path", path).Msg("synonyms file unreadable, using empty table")
		return synonyms.New(nil)
	}
	return table
}
