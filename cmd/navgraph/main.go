package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var VERSION = "UNKNOWN"

func main() {
	rootCmd := &cobra.Command{
		Use:          "navgraph",
		Short:        "navigation graph compiler and path query tool",
		Version:      VERSION,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.AddCommand(
		CompileCmd(),
		PathCmd(),
		WatchCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
