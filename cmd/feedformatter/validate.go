package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/feedformatter/feed"
	"github.com/theoremus-urban-solutions/feedformatter/source"
)

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)

var validateFormats []string

var validateCmd = &cobra.Command{
	Use:   "validate [file-or-url...]",
	Short: "Check configuration and feed documents",
	Long: `Check that feed documents carry the minimum content each format needs.

Without arguments the configuration is checked and every configured feed
is validated against its own format. With arguments each document is
validated against the formats given by --format (all three by default).

Examples:
  feedformatter validate
  feedformatter validate news.yml
  feedformatter validate news.yml --format rss1,atom`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSliceVarP(&validateFormats, "format", "f", nil, "formats to check documents against")
}

type validationTarget struct {
	label   string
	source  string
	formats []feed.Format
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var targets []validationTarget
	if len(args) == 0 {
		fmt.Fprintf(out, "  %s Config valid (%d feeds)\n", checkMark, len(appConfig.Feeds))
		for _, f := range appConfig.Feeds {
			format, err := feed.ParseFormat(appConfig.FormatOf(f))
			if err != nil {
				return err
			}
			targets = append(targets, validationTarget{label: f.Name, source: f.Source, formats: []feed.Format{format}})
		}
	} else {
		formats, err := parseFormats(validateFormats)
		if err != nil {
			return err
		}
		for _, a := range args {
			targets = append(targets, validationTarget{label: a, source: a, formats: formats})
		}
	}

	fetcher := source.NewFetcher(10 * time.Second)
	failed := 0
	for _, t := range targets {
		fd, err := source.Load(cmd.Context(), fetcher, t.source, source.LoadOptions{})
		if err != nil {
			fmt.Fprintf(out, "  %s %s: %v\n", crossMark, t.label, err)
			failed++
			continue
		}
		failed += reportValidation(out, t, fd)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func reportValidation(out io.Writer, t validationTarget, fd *feed.Feed) int {
	failed := 0
	for _, format := range t.formats {
		err := fd.Validate(format)
		var verr *feed.ValidationError
		switch {
		case err == nil:
			fmt.Fprintf(out, "  %s %s is a valid %s feed (%d items)\n", checkMark, t.label, format.Title(), len(fd.Items))
		case errors.As(err, &verr):
			fmt.Fprintf(out, "  %s %s: %s\n", crossMark, t.label, verr.Error())
			failed++
		default:
			fmt.Fprintf(out, "  %s %s: %v\n", crossMark, t.label, err)
			failed++
		}
	}
	return failed
}

func parseFormats(names []string) ([]feed.Format, error) {
	if len(names) == 0 {
		return feed.Formats, nil
	}
	formats := make([]feed.Format, 0, len(names))
	for _, n := range names {
		f, err := feed.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}
