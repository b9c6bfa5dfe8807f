package moderation

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	yaml "gopkg.in/yaml.v3"
)

//go:embed autocorrect.yaml
var defaultCatalog embed.FS

// Correction pairs a misspelling pattern with the text the bot announces.
type Correction struct {
	Pattern *regexp.Regexp
	Correct string
}

type catalogFile struct {
	Corrections []struct {
		Pattern string `yaml:"pattern"`
		Correct string `yaml:"correct"`
	} `yaml:"corrections"`
}

// LoadCorrections loads the embedded correction catalog, replaced entirely
// by overridePath when one is given.
func LoadCorrections(overridePath string) ([]Correction, error) {
	var raw []byte
	var err error
	if overridePath != "" {
		raw, err = os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read correction catalog: %w", err)
		}
	} else {
		raw, err = fs.ReadFile(defaultCatalog, "autocorrect.yaml")
		if err != nil {
			return nil, fmt.Errorf("read embedded correction catalog: %w", err)
		}
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse correction catalog: %w", err)
	}
	out := make([]Correction, 0, len(file.Corrections))
	for _, c := range file.Corrections {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("correction pattern %q: %w", c.Pattern, err)
		}
		out = append(out, Correction{Pattern: re, Correct: c.Correct})
	}
	return out, nil
}
