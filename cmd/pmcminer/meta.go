package main

import (
	"github.com/spf13/cobra"
)

var metaCmd = &cobra.Command{
	Use:   "meta <article file>",
	Short: "Print article metadata, figures, tables and references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		art, err := openArticle(args[0])
		if err != nil {
			return err
		}

		return writeOut(cmd.OutOrStdout(), map[string]any{
			"title":            art.Title(),
			"journal":          art.Journal(),
			"volume":           art.Volume(),
			"first_page":       art.FirstPage(),
			"last_page":        art.LastPage(),
			"pmc_id":           art.PMCID(),
			"pubmed_id":        art.PubmedID(),
			"publication_date": art.PublicationDate(),
			"authors":          art.Authors(),
			"figures":          art.Figures(),
			"tables":           art.Tables(),
			"references":       art.References(),
		})
	},
}
