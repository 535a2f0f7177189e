package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/jsondata"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalOut() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// readDocument resolves the input JSON document. There are three
// possibilities:
//  1. --json <document>
//  2. --stdin (read the document from stdin)
//  3. path as args[0]
func readDocument(cmd *cobra.Command, args []string) ([]byte, error) {
	jsonFlagSet := cmd.Flags().Lookup("json").Changed
	stdinFlagSet, _ := cmd.Flags().GetBool("stdin")
	fileProvided := len(args) > 0

	count := 0
	for _, set := range []bool{jsonFlagSet, stdinFlagSet, fileProvided} {
		if set {
			count++
		}
	}
	if count > 1 {
		return nil, errors.New("multiple input sources specified")
	}
	if count == 0 {
		return nil, errors.New("no input provided")
	}

	switch {
	case jsonFlagSet:
		doc, _ := cmd.Flags().GetString("json")
		return []byte(doc), nil
	case stdinFlagSet:
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(args[0])
	}
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("json", "j", "", "Code-data document to process")
	cmd.Flags().Bool("stdin", false, "Read the document from stdin")
}

func loadCode(cmd *cobra.Command, args []string) (*code.Code, error) {
	doc, err := readDocument(cmd, args)
	if err != nil {
		return nil, err
	}
	return jsondata.Unmarshal(doc)
}

func printJSON(c *code.Code) error {
	plain, err := jsondata.MarshalIndent(c)
	if err != nil {
		return err
	}
	if color.NoColor || !isTerminalOut() {
		fmt.Println(string(plain))
		return nil
	}
	// Re-encode through prettyjson for colorized terminal output.
	var tree any
	if err := json.Unmarshal(plain, &tree); err != nil {
		return err
	}
	pretty, err := prettyjson.Marshal(tree)
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
