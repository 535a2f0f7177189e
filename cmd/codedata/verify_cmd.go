package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/cloudcmds/codedata/codec"
	"github.com/cloudcmds/codedata/jsondata"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Verify round trips for a corpus of code-data documents",
	Long:  "Encodes each document to binary form, decodes it back, and checks both byte-level and structural identity. All failures are reported, not just the first.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *multierror.Error
		var raws []*codec.Raw
		for _, path := range args {
			doc, err := os.ReadFile(path)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			c, err := jsondata.Unmarshal(doc)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
				continue
			}
			raw, err := codec.ToBinary(c)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
				continue
			}
			log.Debug().Str("path", path).Str("name", raw.Name).Msg("encoded document")
			raws = append(raws, raw)
		}
		if err := codec.VerifyCorpus(raws); err != nil {
			result = multierror.Append(result, err)
		}
		if err := result.ErrorOrNil(); err != nil {
			return err
		}
		fmt.Printf("verified %d code objects\n", len(raws))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
