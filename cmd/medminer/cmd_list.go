package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidh-ms/MedMiner/internal/workflows/bootstrap"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available extraction workflows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := bootstrap.Registry()
		for _, name := range reg.Keys() {
			def, _ := reg.Get(name)
			kind := "workflow"
			if def.Domain {
				kind = "domain workflow"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, kind)
		}
		return nil
	},
}
