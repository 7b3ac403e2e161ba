package main

import (
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/feedformatter/feed"
	"github.com/theoremus-urban-solutions/feedformatter/source"
)

var (
	renderFormat     string
	renderPretty     bool
	renderNoValidate bool
	renderOutput     string
	renderTimezone   string
	renderEncoding   string
	renderAssignIDs  bool
	renderDump       bool
	renderTimeoutMS  int
)

var renderCmd = &cobra.Command{
	Use:   "render <file-or-url>",
	Short: "Render one feed document",
	Long: `Render a feed document (YAML, JSON or protobuf Struct) as XML.

The document must hold a "feed" mapping for the channel and an optional
"items" (or "entries") list. Output goes to stdout unless -o is given.

Examples:
  feedformatter render news.yml
  feedformatter render news.json --format rss1 --pretty
  feedformatter render https://example.com/feed.yml -o public/feed.atom
  feedformatter render news.yml --dump --no-validate`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format: rss1, rss2, atom (default from config)")
	renderCmd.Flags().BoolVar(&renderPretty, "pretty", false, "indent the output")
	renderCmd.Flags().BoolVar(&renderNoValidate, "no-validate", false, "skip minimum-content checks")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write to this file instead of stdout")
	renderCmd.Flags().StringVar(&renderTimezone, "tz", "", "IANA zone timestamps are rendered in (default from config, then local)")
	renderCmd.Flags().StringVar(&renderEncoding, "encoding", "", "input encoding: yaml, json, protobuf (default: detect)")
	renderCmd.Flags().BoolVar(&renderAssignIDs, "assign-ids", false, "give entries without an identity a stable urn:uuid id")
	renderCmd.Flags().BoolVar(&renderDump, "dump", false, "dump the decoded feed to stderr before rendering")
	renderCmd.Flags().IntVar(&renderTimeoutMS, "timeout-ms", 10000, "fetch timeout for URL sources")
}

func runRender(cmd *cobra.Command, args []string) error {
	src := args[0]

	formatName := renderFormat
	if formatName == "" {
		formatName = appConfig.Output.Format
	}
	format, err := feed.ParseFormat(formatName)
	if err != nil {
		return err
	}

	opts := feed.Options{
		Validate: appConfig.ValidateOutput() && !renderNoValidate,
		Pretty:   appConfig.Output.Pretty,
		Warnings: feed.NewWarningAggregator(),
	}
	if cmd.Flags().Changed("pretty") {
		opts.Pretty = renderPretty
	}
	if opts.Location, err = renderLocation(); err != nil {
		return err
	}

	loadOpts := source.LoadOptions{AssignIDs: renderAssignIDs}
	if renderEncoding != "" {
		enc, err := source.ParseEncoding(renderEncoding)
		if err != nil {
			return err
		}
		loadOpts.Encoding = &enc
	}

	fetcher := source.NewFetcher(time.Duration(renderTimeoutMS) * time.Millisecond)
	fd, err := source.Load(cmd.Context(), fetcher, src, loadOpts)
	if err != nil {
		return err
	}

	if renderDump {
		dumper := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		dumper.Fdump(cmd.ErrOrStderr(), fd)
	}

	if renderOutput != "" {
		err = fd.FormatFile(format, renderOutput, opts)
	} else {
		var out string
		if out, err = fd.Format(format, opts); err == nil {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		}
	}
	opts.Warnings.LogAll(logger, src)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("source", src).
		Str("format", format.String()).
		Int("items", len(fd.Items)).
		Msg("feed rendered")
	return nil
}

func renderLocation() (*time.Location, error) {
	if renderTimezone != "" {
		loc, err := time.LoadLocation(renderTimezone)
		if err != nil {
			return nil, fmt.Errorf("invalid --tz: %w", err)
		}
		return loc, nil
	}
	return appConfig.Location()
}
