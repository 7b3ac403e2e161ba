package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/feedformatter/publish"
	"github.com/theoremus-urban-solutions/feedformatter/store"
)

var updateCmd = &cobra.Command{
	Use:   "update [feed...]",
	Short: "Publish configured feeds once",
	Long: `Render configured feeds, store the results and write their output files.

Without arguments every configured feed is published. A failing feed does
not stop the others; its previous output is left in place.

Examples:
  feedformatter update
  feedformatter update news releases`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	st, err := store.Open(appConfig.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := publish.New(appConfig, st, nil, logger)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		results, err := p.PublishAll(cmd.Context())
		for _, res := range results {
			printResult(cmd, res)
		}
		return err
	}

	failed := 0
	for _, name := range args {
		res, err := p.PublishByName(cmd.Context(), name, "")
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %v\n", crossMark, err)
			failed++
			continue
		}
		printResult(cmd, res)
	}
	if failed > 0 {
		return fmt.Errorf("%d feed(s) failed", failed)
	}
	return nil
}

func printResult(cmd *cobra.Command, res publish.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s, %d items, %d bytes)\n",
		checkMark, res.Feed, res.Format, res.Document.Items, len(res.Document.Body))
}
