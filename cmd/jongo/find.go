package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jongo-go/jongo"
)

func newFindCmd(a *app) *cobra.Command {
	var (
		limit, skip      int64
		sort, projection string
	)

	cmd := &cobra.Command{
		Use:     "find <collection> [template] [params...]",
		Short:   "Print the documents matching a template",
		Example: `  jongo find friends '{age:{$gt:#}}' 18 --sort '{name:1}' --limit 10`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, disconnect, err := a.collection(ctx, args[0])
			if err != nil {
				return err
			}
			defer disconnect()

			tmpl, params := templateArgs(args[1:])
			f := c.Find(tmpl, params...).Limit(limit).Skip(skip)
			if sort != "" {
				f = f.Sort(sort)
			}
			if projection != "" {
				f = f.Projection(projection)
			}

			it, err := jongo.Iter[bson.Raw](ctx, f)
			if err != nil {
				return err
			}
			for doc, err := range it.Seq(ctx) {
				if err != nil {
					return err
				}
				out, err := bson.MarshalExtJSON(doc, false, false)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&limit, "limit", 0, "maximum number of documents")
	flags.Int64Var(&skip, "skip", 0, "number of documents to skip")
	flags.StringVar(&sort, "sort", "", "sort template, e.g. {name:1}")
	flags.StringVar(&projection, "projection", "", "projection template, e.g. {name:1}")
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection> [template] [params...]",
		Short: "Print the number of documents matching a template",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, disconnect, err := a.collection(ctx, args[0])
			if err != nil {
				return err
			}
			defer disconnect()

			tmpl, params := templateArgs(args[1:])
			n, err := c.Count(ctx, tmpl, params...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
