package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/feedformatter/config"
	"github.com/theoremus-urban-solutions/feedformatter/publish"
	"github.com/theoremus-urban-solutions/feedformatter/store"
)

var (
	watchSource    string
	watchOutput    string
	watchFormat    string
	watchAssignIDs bool
	watchNoStore   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [feed]",
	Short: "Re-publish a feed every time its source file changes",
	Long: `Watch a local feed document and re-publish it on every save.

Name a configured feed, or describe one ad hoc with --source and --output.
A save that fails to render is logged and the previous output is kept.

Examples:
  feedformatter watch news
  feedformatter watch --source news.yml --output public/news.xml --format rss2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchSource, "source", "", "local feed document to watch")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "file the rendered feed is written to")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "output format: rss1, rss2, atom")
	watchCmd.Flags().BoolVar(&watchAssignIDs, "assign-ids", false, "give entries without an identity a stable urn:uuid id")
	watchCmd.Flags().BoolVar(&watchNoStore, "no-store", false, "do not record renders in the document store")
}

func watchTarget(args []string) (config.Feed, error) {
	if len(args) == 1 {
		f, ok := appConfig.Feed(args[0])
		if !ok {
			return config.Feed{}, fmt.Errorf("%w: %q", publish.ErrUnknownFeed, args[0])
		}
		return f, nil
	}
	if watchSource == "" {
		return config.Feed{}, fmt.Errorf("name a configured feed or pass --source")
	}
	return config.Feed{
		Name:      "adhoc",
		Source:    watchSource,
		Format:    watchFormat,
		Output:    watchOutput,
		AssignIDs: watchAssignIDs,
	}, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	f, err := watchTarget(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if !watchNoStore {
		if st, err = store.Open(appConfig.Store.Path); err != nil {
			return err
		}
		defer st.Close()
	}

	p, err := publish.New(appConfig, st, nil, logger)
	if err != nil {
		return err
	}
	return p.Watch(ctx, f)
}
