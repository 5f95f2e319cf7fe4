package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
)

func TestLoaderDefaultCountry(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "config.yaml")
	writeFile(t, cfgPath, sampleConfig)
	writeFile(t, filepath.Join(root, "countries", "NL", "synonyms.json"),
		`{"synonyms": {"btw": ["belasting", "omzetbelasting"]}}`)

	loader := Loader{ConfigPath: cfgPath}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if comp.Country != "NL" {
		t.Errorf("expected NL, got %s", comp.Country)
	}
	if comp.Settings.Threshold != 80 {
		t.Errorf("expected threshold 80, got %d", comp.Settings.Threshold)
	}
	if comp.Synonyms.Len() != 1 {
		t.Errorf("expected 1 trigger, got %d", comp.Synonyms.Len())
	}
}

func TestLoaderMissingSynonyms(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "config.yaml")
	writeFile(t, cfgPath, sampleConfig)

	loader := Loader{ConfigPath: cfgPath, Country: "BE"}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Synonyms == nil || comp.Synonyms.Len() != 0 {
		t.Errorf("expected empty synonym table")
	}
	if comp.Settings.Threshold != 85 {
		t.Errorf("expected BE threshold 85, got %d", comp.Settings.Threshold)
	}
}

func TestLoaderMalformedSynonyms(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "config.yaml")
	writeFile(t, cfgPath, sampleConfig)
	writeFile(t, filepath.Join(root, "countries", "NL", "synonyms.json"), `{"synonyms": `)

	comp, err := (&Loader{ConfigPath: cfgPath}).Load()
	if err != nil {
		t.Fatalf("Load should degrade to empty synonyms: %v", err)
	}
	if comp.Synonyms.Len() != 0 {
		t.Errorf("expected empty synonym table, got %d triggers", comp.Synonyms.Len())
	}
}

func TestLoaderExplicitRoot(t *testing.T) {
	cfgDir := t.TempDir()
	dataRoot := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	writeFile(t, cfgPath, sampleConfig)

	comp, err := (&Loader{ConfigPath: cfgPath, Root: dataRoot, Country: "BE"}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dataRoot, "countries", "BE", "taxonomy.csv")
	if comp.Files.Taxonomy != want {
		t.Errorf("expected %s, got %s", want, comp.Files.Taxonomy)
	}
}

func TestLoaderUnknownCountry(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "config.yaml")
	writeFile(t, cfgPath, sampleConfig)

	_, err := (&Loader{ConfigPath: cfgPath, Country: "XX"}).Load()
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoaderMissingConfig(t *testing.T) {
	_, err := (&Loader{ConfigPath: "/nonexistent/config.yaml"}).Load()
	if err == nil {
		t.Error("Should error on nonexistent config")
	}
}
