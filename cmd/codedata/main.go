package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	noColor bool
	verbose bool

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "codedata",
	Short:   "Inspect and transform compiled code objects",
	Long:    "codedata converts compiled code objects between their binary form and a block-structured JSON representation, disassembles them, and verifies round trips.",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{
			Out:     os.Stderr,
			NoColor: color.NoColor,
		}).Level(level).With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
