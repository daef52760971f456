// Command chameleon compiles .chm grammar files into a self-contained
// C translation unit exposing a generate/mutate runtime API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	Verbose bool
	Config  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "chameleon",
		Short:         "Compile .chm grammars into C fuzzing generators/mutators",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "optional YAML file of default flag values")

	cmd.AddCommand(newTranslateCommand(opts))
	return cmd
}
