package main

import (
	"github.com/spf13/cobra"
)

var jsonCmd = &cobra.Command{
	Use:   "json [file]",
	Short: "Parse and reprint a code-data document",
	Long:  "Parses a code-data document, validating its structure, and prints it back in canonical form.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCode(cmd, args)
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

func init() {
	addInputFlags(jsonCmd)
	rootCmd.AddCommand(jsonCmd)
}
