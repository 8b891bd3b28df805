package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "pmcminer",
	Short: "Sentence-level mining of PubMed Central articles",
	Long: `pmcminer turns JATS/NXML articles into ordered sentence records with
section and cross-reference metadata, and scores sentences for likely
study-population / demographics content.

Commands:
  sentences   extract sentence records from an article file
  meta        print article metadata, figures, tables and references
  fetch       download an article's NXML from PubMed Central`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	rootCmd.AddCommand(sentencesCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(fetchCmd)
}

// writeOut marshals v to the writer in the selected output format.
func writeOut(w io.Writer, v any) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}
