package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/jokegraph/jokebot"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the workflow graph as a Mermaid diagram",
		Long:  `Builds the joke bot workflow and prints a Mermaid diagram of its nodes and edges. Dashed edges are router labels.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := jokebot.New(nil, nil).Build()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), g.Mermaid())
			return err
		},
	}
}
