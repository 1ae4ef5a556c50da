package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/visiongrid/visiongrid-client/pkg/client"
	"github.com/visiongrid/visiongrid-client/pkg/query"
)

// newQueryCmd builds the shared `query` subcommand for a resource type.
func newQueryCmd(resource query.ResourceType, short string) *cobra.Command {
	var (
		fields   []string
		searches []string
		sortKey  string
		desc     bool
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: strings.ToUpper(short[:1]) + short[1:],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := query.New(resource)
			if err != nil {
				return err
			}

			if len(fields) == 0 {
				q.AddAllFields()
			} else if err := q.AddFields(fields...); err != nil {
				return err
			}

			for _, search := range searches {
				field, value, found := strings.Cut(search, ":")
				if !found {
					q.AddSearchAny(search)
					continue
				}
				if err := q.AddSearch(field, value); err != nil {
					return err
				}
			}

			if sortKey != "" {
				if err := q.SortBy(sortKey, desc); err != nil {
					return err
				}
			}
			if limit > 0 {
				if err := q.SetLimit(limit); err != nil {
					return err
				}
			}
			if offset > 0 {
				if err := q.SetOffset(offset); err != nil {
					return err
				}
			}

			c, err := newClient()
			if err != nil {
				return err
			}

			var result *client.QueryResult
			switch resource {
			case query.ResourceAnalytics:
				result, err = c.QueryAnalytics(cmd.Context(), q)
			case query.ResourceData:
				result, err = c.QueryData(cmd.Context(), q)
			case query.ResourceJobs:
				result, err = c.QueryJobs(cmd.Context(), q)
			default:
				return fmt.Errorf("unsupported resource type %q", resource)
			}
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"records": result.Records,
				"count":   result.Count,
			})
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return (default all supported fields)")
	cmd.Flags().StringArrayVar(&searches, "search", nil, "search filter, field:value or bare value (repeatable)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "field to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of records to skip")

	return cmd
}
