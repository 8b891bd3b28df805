package score

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Keyword is the weight configuration for one anchor lemma: the score it
// contributes per occurrence and how many occurrences per sentence may
// count.
type Keyword struct {
	Base int `yaml:"base" json:"base"`
	Cap  int `yaml:"cap" json:"cap"`
}

// Tables holds the per-anchor keyword weights used by both scoring
// policies.
type Tables struct {
	Keywords map[string]Keyword `yaml:"keywords" json:"keywords"`
}

// DefaultTables returns the built-in keyword weights.
func DefaultTables() Tables {
	return Tables{Keywords: map[string]Keyword{
		"patient":    {Base: 5, Cap: 1},
		"year":       {Base: 5, Cap: 2},
		"male":       {Base: 5, Cap: 1},
		"female":     {Base: 5, Cap: 1},
		"subject":    {Base: 5, Cap: 1},
		"individual": {Base: 5, Cap: 1},
	}}
}

// LoadTables reads keyword weight overrides from a YAML file.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read score tables: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse score tables: %w", err)
	}
	if len(t.Keywords) == 0 {
		return Tables{}, fmt.Errorf("score tables %s: no keywords defined", path)
	}
	return t, nil
}
