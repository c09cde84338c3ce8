// Command listpatch reconciles lists from the command line and prints a trace of every operation.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:          "listpatch [command]",
		Short:        "Patch lists in place with edit scripts",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(patchCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
