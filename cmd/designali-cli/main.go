package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adolfohrq/designali-hub-google/pkg/client"
	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/adolfohrq/designali-hub-google/pkg/sync"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string

	listFavorites bool
	suggestCount  int
)

var rootCmd = &cobra.Command{
	Use:   "designali-cli",
	Short: "Command-line companion for a Designali Hub server",
	Long: `Browse, search and watch your synced design collections
(tools, videos, notes, courses, tutorials, resources) from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if token == "" {
			token = os.Getenv("DESIGNALI_TOKEN")
		}
		if env := os.Getenv("DESIGNALI_SERVER"); serverURL == "http://localhost:8080" && env != "" {
			serverURL = env
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List the records of one collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search across all collections",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var watchCmd = &cobra.Command{
	Use:   "watch [collection]",
	Short: "Stream change events for a collection until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [topic]",
	Short: "Ask the hub's AI for tool suggestions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "hub server base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (defaults to DESIGNALI_TOKEN)")

	listCmd.Flags().BoolVar(&listFavorites, "favorites", false, "only show favorites")
	suggestCmd.Flags().IntVar(&suggestCount, "count", 5, "number of suggestions")

	rootCmd.AddCommand(listCmd, searchCmd, statsCmd, watchCmd, suggestCmd, whoamiCmd)
}

func newClient() (*client.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("no access token; pass --token or set DESIGNALI_TOKEN")
	}
	return client.New(serverURL, token), nil
}

func ownerID(ctx context.Context, c *client.Client) (uuid.UUID, error) {
	user, err := c.User(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.ID, nil
}

// loadedStores holds one loaded store per collection, in dashboard order.
type loadedStores struct {
	tools     *sync.Store[sync.ToolFields]
	videos    *sync.Store[sync.VideoFields]
	notes     *sync.Store[sync.NoteFields]
	courses   *sync.Store[sync.CourseFields]
	tutorials *sync.Store[sync.TutorialFields]
	resources *sync.Store[sync.ResourceFields]
}

func loadAll(ctx context.Context, remote sync.Remote, owner uuid.UUID) (*loadedStores, error) {
	logger := slog.Default()
	s := &loadedStores{
		tools:     sync.NewToolStore(remote, owner, logger),
		videos:    sync.NewVideoStore(remote, owner, logger),
		notes:     sync.NewNoteStore(remote, owner, logger),
		courses:   sync.NewCourseStore(remote, owner, logger),
		tutorials: sync.NewTutorialStore(remote, owner, logger),
		resources: sync.NewResourceStore(remote, owner, logger),
	}

	for _, load := range []func(context.Context) error{
		s.tools.Load, s.videos.Load, s.notes.Load,
		s.courses.Load, s.tutorials.Load, s.resources.Load,
	} {
		if err := load(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *loadedStores) searchSources() []sync.Searcher {
	return []sync.Searcher{
		sync.ToolSearchSource(s.tools),
		sync.VideoSearchSource(s.videos),
		sync.NoteSearchSource(s.notes),
		sync.CourseSearchSource(s.courses),
		sync.TutorialSearchSource(s.tutorials),
		sync.ResourceSearchSource(s.resources),
	}
}

func (s *loadedStores) statSources() []sync.StatSource {
	return []sync.StatSource{
		sync.ToolStatSource(s.tools),
		sync.VideoStatSource(s.videos),
		sync.NoteStatSource(s.notes),
		sync.CourseStatSource(s.courses),
		sync.TutorialStatSource(s.tutorials),
		sync.ResourceStatSource(s.resources),
	}
}

func printRecords[T any](cmd *cobra.Command, store *sync.Store[T], title func(sync.Record[T]) string) {
	records := store.Records()
	if listFavorites {
		records = store.Query(func(r sync.Record[T]) bool { return r.Favorite })
	}

	if len(records) == 0 {
		cmd.Println("No records.")
		return
	}

	for _, rec := range records {
		marker := " "
		if rec.Favorite {
			marker = "*"
		}
		cmd.Printf("%s %s  %s\n", marker, rec.ID, title(rec))
	}
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	owner, err := ownerID(ctx, c)
	if err != nil {
		return err
	}

	collection := args[0]
	logger := slog.Default()

	switch collection {
	case sync.CollectionTools:
		store := sync.NewToolStore(c, owner, logger)
		if err := store.Load(ctx); err != nil {
			return err
		}
		printRecords(cmd, store, func(r sync.Record[sync.ToolFields]) string {
			return fmt.Sprintf("%s (%s)", r.Fields.Name, r.Fields.Category)
		})
	case sync.CollectionVideos:
		store := sync.NewVideoStore(c, owner, logger)
		if err := store.Load(ctx); err != nil {
			return err
		}
		printRecords(cmd, store, func(r sync.Record[sync.VideoFields]) string {
			return fmt.Sprintf("%s [%s]", r.Fields.Title, r.Fields.Channel)
		})
	case sync.CollectionNotes:
		store := sync.NewNoteStore(c, owner, logger)
		if err := store.Load(ctx); err != nil {
			return err
		}
		printRecords(cmd, store, func(r sync.Record[sync.NoteFields]) string {
			return r.Fields.Title
		})
	case sync.CollectionCourses:
		store := sync.NewCourseStore(c, owner, logger)
		if err := store.Load(ctx); err != nil {
			return err
		}
		printRecords(cmd, store, func(r sync.Record[sync.CourseFields]) string {
			return fmt.Sprintf("%s (%s, %d%%)", r.Fields.Title, r.Fields.Status, r.Fields.Progress)
		})
	case sync.CollectionTutorials:
		store := sync.NewTutorialStore(c, owner, logger)
		if err := store.Load(ctx); err != nil {
			return err
		}
		printRecords(cmd, store, func(r sync.Record[sync.TutorialFields]) string {
			return fmt.Sprintf("%s [%s]", r.Fields.Title, r.Fields.Source)
		})
	case sync.CollectionResources:
		store := sync.NewResourceStore(c, owner, logger)
		if err := store.Load(ctx); err != nil {
			return err
		}
		printRecords(cmd, store, func(r sync.Record[sync.ResourceFields]) string {
			return fmt.Sprintf("%s (%s)", r.Fields.Title, r.Fields.Type)
		})
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	owner, err := ownerID(ctx, c)
	if err != nil {
		return err
	}

	stores, err := loadAll(ctx, c, owner)
	if err != nil {
		return err
	}

	index := sync.NewIndex(stores.searchSources()...)
	results := index.Search(args[0])
	if len(results) == 0 {
		cmd.Println("No results.")
		return nil
	}

	current := ""
	for _, res := range results {
		if res.Collection != current {
			current = res.Collection
			cmd.Printf("\n%s\n", current)
		}
		cmd.Printf("  %s", res.Title)
		if res.Snippet != "" {
			cmd.Printf("  -  %s", res.Snippet)
		}
		cmd.Println()
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	owner, err := ownerID(ctx, c)
	if err != nil {
		return err
	}

	stores, err := loadAll(ctx, c, owner)
	if err != nil {
		return err
	}

	stats := sync.Compute(stores.statSources()...)

	cmd.Printf("Total records: %d\n\n", stats.Total)
	for _, name := range []string{
		sync.CollectionTools, sync.CollectionVideos, sync.CollectionNotes,
		sync.CollectionCourses, sync.CollectionTutorials, sync.CollectionResources,
	} {
		snap := stats.Collections[name]
		cmd.Printf("%-10s %4d records, %d favorites\n", name, snap.Count, snap.Favorites)
		for field, values := range snap.Groups {
			for value, count := range values {
				cmd.Printf("             %s=%s: %d\n", field, value, count)
			}
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	collection := args[0]

	sub, err := c.SubscribeChanges(cmd.Context(), collection, func(ev dto.ChangeEvent) {
		switch ev.Kind {
		case dto.ChangeDeleted:
			cmd.Printf("%s  %s  %s\n", ev.Kind, ev.Collection, ev.ID)
		default:
			if ev.Record != nil {
				cmd.Printf("%s  %s  %s  %s\n", ev.Kind, ev.Collection, ev.Record.ID, ev.Record.Data)
			}
		}
	})
	if err != nil {
		return err
	}
	defer sub.Dispose()

	cmd.Printf("Watching %s, press Ctrl+C to stop...\n", collection)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	tools, err := c.SuggestTools(cmd.Context(), args[0], suggestCount)
	if err != nil {
		return err
	}

	for i, tool := range tools {
		cmd.Printf("[%d] %s (%s)\n    %s\n    %s\n", i+1, tool.Name, tool.Category, tool.URL, tool.Description)
	}
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	user, err := c.User(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("%s <%s> via %s, theme %s\n", user.Name, user.Email, user.Provider, user.Theme)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
