package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blockberries/bquery/client"
	"github.com/blockberries/bquery/search"
	"github.com/blockberries/bquery/types"
)

var cmdSearch = &cobra.Command{
	Use:   "search",
	Short: "Search indexed transactions",
	Long: `Search indexed transactions by exactly one of --id, --height,
--address or --tag. --tag may be repeated; all tags must match.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

var flagSearch struct {
	ID        string
	Height    uint64
	Address   string
	Tags      []string
	MinHeight uint64
	MaxHeight uint64
}

func init() {
	cmdMain.AddCommand(cmdSearch)

	f := cmdSearch.Flags()
	f.StringVar(&flagSearch.ID, "id", "", "Transaction hash")
	f.Uint64Var(&flagSearch.Height, "height", 0, "Block height")
	f.StringVar(&flagSearch.Address, "address", "", "Sender or recipient of a transfer")
	f.StringArrayVar(&flagSearch.Tags, "tag", nil, "Event attribute condition, kind.key=value")
	f.Uint64Var(&flagSearch.MinHeight, "min-height", 0, "Lowest height to include")
	f.Uint64Var(&flagSearch.MaxHeight, "max-height", 0, "Highest height to include (0 for no limit)")
}

func runSearch(cmd *cobra.Command, _ []string) error {
	q, err := searchQuery(cmd)
	if err != nil {
		return err
	}
	filter := search.Filter{MinHeight: flagSearch.MinHeight, MaxHeight: flagSearch.MaxHeight}
	return withClient(cmd, func(ctx context.Context, c *client.Client) (interface{}, error) {
		return c.SearchTx(ctx, q, filter)
	})
}

func searchQuery(cmd *cobra.Command) (search.Query, error) {
	var queries []search.Query
	if flagSearch.ID != "" {
		queries = append(queries, search.ByID{ID: flagSearch.ID})
	}
	if cmd.Flags().Changed("height") {
		queries = append(queries, search.ByHeight{Height: flagSearch.Height})
	}
	if flagSearch.Address != "" {
		queries = append(queries, search.BySentFromOrTo{Address: flagSearch.Address})
	}
	if len(flagSearch.Tags) > 0 {
		tags, err := parseTags(flagSearch.Tags)
		if err != nil {
			return nil, err
		}
		queries = append(queries, search.ByTags{Tags: tags})
	}

	if len(queries) != 1 {
		return nil, errors.New("specify exactly one of --id, --height, --address or --tag")
	}
	return queries[0], nil
}

func parseTags(raw []string) ([]types.TagCondition, error) {
	tags := make([]types.TagCondition, 0, len(raw))
	for _, s := range raw {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q, want kind.key=value", s)
		}
		tags = append(tags, types.TagCondition{Key: key, Value: value})
	}
	return tags, nil
}
