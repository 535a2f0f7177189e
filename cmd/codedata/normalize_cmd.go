package main

import (
	"github.com/spf13/cobra"

	"github.com/cloudcmds/codedata/code"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize a code-data document",
	Long:  "Drops constants no instruction references, renumbers the remaining ones, and clears recorded encoding widths, recursing into nested code objects.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCode(cmd, args)
		if err != nil {
			return err
		}
		before := c.InstructionCount()
		n := code.Normalize(c)
		log.Debug().
			Str("name", n.Name).
			Int("instructions", before).
			Int("constants", len(n.Constants)).
			Msg("normalized code object")
		return printJSON(n)
	},
}

func init() {
	addInputFlags(normalizeCmd)
	rootCmd.AddCommand(normalizeCmd)
}
