// Package main provides the typedensity CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "typedensity",
		Short: "Type attribution density for Java source files",
		Long: `Typedensity canonicalizes the type graphs attached to parsed source files,
deduplicating structurally identical types across files, and reports how much
type information each file carries with and without non-visible members.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newStudyCmd(),
		newWeighCmd(),
		newDedupCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
