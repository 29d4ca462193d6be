package cmd

import (
	"fmt"
	"os"

	"github.com/LawnGnome/graphql-field-timer/packages/timer"
	"gopkg.in/yaml.v3"
)

// loadVariables builds the shared variables map from either an inline
// JSON object or a YAML/JSON file. JSON is a subset of YAML, so a
// single decoder covers both file formats.
func loadVariables(inline, file string) (map[string]any, error) {
	if inline != "" && file != "" {
		return nil, fmt.Errorf("--variables and --variables-file are mutually exclusive")
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("cannot read variables file: %w", err)
		}
		var variables map[string]any
		if err := yaml.Unmarshal(data, &variables); err != nil {
			return nil, fmt.Errorf("parsing variables file: %w", err)
		}
		if variables == nil {
			variables = map[string]any{}
		}
		return variables, nil
	}

	return timer.ParseVariables(inline)
}
