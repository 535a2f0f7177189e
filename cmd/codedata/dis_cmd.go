package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/dis"
)

var disCmd = &cobra.Command{
	Use:   "dis [file]",
	Short: "Disassemble a code-data document",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCode(cmd, args)
		if err != nil {
			return err
		}
		target := c
		if name, _ := cmd.Flags().GetString("func"); name != "" {
			target = findFunction(c, name)
			if target == nil {
				return fmt.Errorf("function %q not found", name)
			}
		}
		dis.Fprint(os.Stdout, target)
		return nil
	},
}

// findFunction locates a nested code object by name, depth first.
func findFunction(c *code.Code, name string) *code.Code {
	for _, cst := range c.Constants {
		cc, ok := cst.(code.CodeConst)
		if !ok {
			continue
		}
		if cc.Code.Name == name {
			return cc.Code
		}
		if found := findFunction(cc.Code, name); found != nil {
			return found
		}
	}
	return nil
}

func init() {
	addInputFlags(disCmd)
	disCmd.Flags().String("func", "", "Disassemble only the named nested code object")
	rootCmd.AddCommand(disCmd)
}
