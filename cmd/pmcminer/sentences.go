package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmertens/pmcminer/internal/article"
)

var sentencesScope string

var sentencesCmd = &cobra.Command{
	Use:   "sentences <article file>",
	Short: "Extract sentence records from an NXML or HTML article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		art, err := openArticle(args[0])
		if err != nil {
			return err
		}

		out := map[string]any{}
		switch sentencesScope {
		case "abstract":
			out["abstract"] = art.Abstract()
		case "body":
			out["full_text"] = art.FullText()
		case "all":
			out["abstract"] = art.Abstract()
			out["full_text"] = art.FullText()
		default:
			return fmt.Errorf("unknown scope: %s", sentencesScope)
		}
		return writeOut(cmd.OutOrStdout(), out)
	},
}

func init() {
	sentencesCmd.Flags().StringVar(
		&sentencesScope, "scope", "all", "which sentences to extract: abstract, body, or all",
	)
}

func openArticle(path string) (*article.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		return article.ParseHTML(f)
	}
	return article.Parse(f)
}
