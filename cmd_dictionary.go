package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dictionaryCmd = &cobra.Command{
	Use:   "dictionary <project.yaml>",
	Short: "List the tables and variables a project's data dictionary declares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(args[0], "")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), GenerateDictionaryTable(p.dictionary, format))
		return nil
	},
}
