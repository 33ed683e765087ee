package main

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/citeproc-go/citeproc/render"
)

// fileConfig is the CLI's on-disk configuration (SPEC_FULL.md §2.3):
// style path, locale directory, references path, default language and
// output format. NearNoteDistance is parsed but not applied; the style's
// own near-note-distance is used. There is no given-name-rule setting.
type fileConfig struct {
	StylePath        string `yaml:"style_path"`
	LocaleDir        string `yaml:"locale_dir"`
	ReferencesPath   string `yaml:"references_path"`
	DefaultLang      string `yaml:"default_lang"`
	Format           string `yaml:"format"`
	NearNoteDistance int    `yaml:"near_note_distance"`
}

func loadConfig(path string) (fileConfig, error) {
	cfg := fileConfig{DefaultLang: "en-US", Format: "plain"}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c fileConfig) outputFormat() render.Format {
	return render.ParseFormat(c.Format)
}
