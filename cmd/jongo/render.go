package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jongo-go/jongo/pkg/query"
)

func newRenderCmd(a *app) *cobra.Command {
	var asDocument bool

	cmd := &cobra.Command{
		Use:   "render <template> [params...]",
		Short: "Print a template with its parameters bound",
		Example: `  jongo render '{name:#, age:{$gt:#}}' '"John"' 18
  jongo render --document '{_id:#}' '{"$oid":"47cc67093475061e3d95369d"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			factory, err := query.NewFactory(a.cfg.TemplateCacheSize, nil)
			if err != nil {
				return err
			}
			tmpl, params := templateArgs(args)
			q, err := factory.CreateQuery(tmpl, params...)
			if err != nil {
				return err
			}

			if !asDocument {
				resolved, err := q.Resolve()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resolved)
				return nil
			}

			doc, err := q.ToDocument()
			if err != nil {
				return err
			}
			out, err := bson.MarshalExtJSON(doc, false, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asDocument, "document", false, "print the parsed document as Extended JSON")
	return cmd
}
