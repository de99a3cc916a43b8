package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/lib/pq" // postgres driver
	"github.com/spf13/cobra"

	"github.com/MadMax267/payload/config"
	"github.com/MadMax267/payload/versionstore"
	"github.com/MadMax267/payload/versionstore/postgresengine"
)

var (
	collectionsPath string
	whereFlags      []string
	sortFlags       []string
	limit           uint
	page            uint
	overrideAccess  bool
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "payloadctl",
	Short: "CLI for querying the current versions of a versioned document store",
	Long:  `payloadctl resolves, filters, sorts and paginates the latest version per entity of a collection stored in PostgreSQL.`,
}

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Resolve the current versions of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collections, err := config.LoadCollections(collectionsPath)
		if err != nil {
			return err
		}

		collection, found := collections[args[0]]
		if !found {
			return fmt.Errorf("unknown collection: %s", args[0])
		}

		where, err := parseWhereFlags(whereFlags)
		if err != nil {
			return err
		}

		sortSpec, err := parseSortFlags(sortFlags)
		if err != nil {
			return err
		}

		db, err := sql.Open("postgres", config.PostgresDSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		options := make([]postgresengine.Option, 0)
		if verbose {
			options = append(options, postgresengine.WithLogger(slogLogger{logger: newSlogLogger()}))
		}

		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		if err != nil {
			return err
		}

		params := postgresengine.QueryLatestParams{
			Collection:     collection,
			Where:          where,
			Access:         versionstore.AllowAll(),
			OverrideAccess: overrideAccess,
		}

		if limit > 0 || len(sortSpec) > 0 {
			params.Page = &versionstore.Page{Limit: limit, Number: page, Sort: sortSpec}
		}

		result, err := store.QueryLatest(context.Background(), params)
		if err != nil {
			return err
		}

		rendered, err := jsoniter.ConfigFastest.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(rendered))

		return nil
	},
}

// parseWhereFlags turns repeated --where key=value flags into one conjunction.
func parseWhereFlags(flags []string) (*versionstore.Where, error) {
	predicates := make([]*versionstore.Where, 0, len(flags))

	for _, flag := range flags {
		key, value, found := strings.Cut(flag, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --where flag, expected key=value: %s", flag)
		}

		predicates = append(predicates, versionstore.Eq(key, value))
	}

	return versionstore.And(predicates...), nil
}

// parseSortFlags turns repeated --sort field[:direction] flags into a sort spec.
func parseSortFlags(flags []string) (versionstore.Sort, error) {
	sortSpec := make(versionstore.Sort, 0, len(flags))

	for _, flag := range flags {
		field, token, found := strings.Cut(flag, ":")
		if field == "" {
			return nil, fmt.Errorf("invalid --sort flag, expected field[:direction]: %s", flag)
		}

		direction := versionstore.SortAscending

		if found {
			parsed, err := versionstore.ParseSortDirection(token)
			if err != nil {
				return nil, fmt.Errorf("invalid --sort flag %s: %w", flag, err)
			}

			direction = parsed
		}

		sortSpec = append(sortSpec, versionstore.SortField{Field: field, Direction: direction})
	}

	return sortSpec, nil
}

// slogLogger adapts log/slog to the engine's Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (s slogLogger) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.logger.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

func newSlogLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func init() {
	queryCmd.Flags().StringVar(&collectionsPath, "collections", "collections.yaml", "path to the collections YAML file")
	queryCmd.Flags().StringArrayVar(&whereFlags, "where", nil, "filter predicate as key=value (repeatable, ANDed)")
	queryCmd.Flags().StringArrayVar(&sortFlags, "sort", nil, "sort key as field[:asc|desc] (repeatable)")
	queryCmd.Flags().UintVar(&limit, "limit", 0, "page size (0 disables pagination)")
	queryCmd.Flags().UintVar(&page, "page", 1, "page number, 1-based")
	queryCmd.Flags().BoolVar(&overrideAccess, "override-access", false, "bypass access control for this call")
	queryCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log executed SQL to stderr")

	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
