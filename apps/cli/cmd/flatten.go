package cmd

import (
	"fmt"
	"strings"

	"github.com/LawnGnome/graphql-field-timer/packages/flatten"
	"github.com/spf13/cobra"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten [file]",
	Short: "Print the standalone queries without executing them",
	Long: `Flatten a GraphQL query document and print one standalone query per
leaf field, in the order they would be executed. Useful for checking
what "fieldtimer time" would send before pointing it at an endpoint.

Examples:
  fieldtimer flatten query.graphql
  cat query.graphql | fieldtimer flatten --compact`,
	Args: cobra.MaximumNArgs(1),
	RunE: flattenCommand,
}

var compactFlag bool

func init() {
	flattenCmd.Flags().BoolVarP(&compactFlag, "compact", "c", false, "Print each query on a single line")
}

func flattenCommand(cmd *cobra.Command, args []string) error {
	docPath := ""
	if len(args) == 1 {
		docPath = args[0]
	}

	source, err := readDocument(docPath)
	if err != nil {
		return err
	}

	doc, err := flatten.ParseDocument(source)
	if err != nil {
		return err
	}
	queries, err := flatten.Flatten(doc)
	if err != nil {
		return err
	}

	for i, query := range queries {
		if compactFlag {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(strings.Fields(query), " "))
			continue
		}
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprintln(cmd.OutOrStdout(), query)
	}
	return nil
}
