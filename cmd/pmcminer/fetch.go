package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmertens/pmcminer/internal/fetch"
)

var (
	fetchOut   string
	fetchDelay time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <pmc id>",
	Short: "Download an article's NXML from PubMed Central",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := fetch.NewClient("", fetchDelay)
		defer client.Close()

		data, err := client.Article(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if fetchOut == "" || fetchOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(fetchOut, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(data), fetchOut)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "file", "f", "", "write NXML to this file instead of stdout")
	fetchCmd.Flags().DurationVar(&fetchDelay, "delay", 0, "wait this long before connecting (batch politeness)")
}
