// Package main is the stargazer command line: it records answers and reads
// mastery, review and recommendation views from the configured store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	asJSON     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "stargazer",
		Short:         "Stargazer - adaptive astronomy learning progress",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.asJSON, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(answerCmd(opts))
	rootCmd.AddCommand(resolveCmd(opts))
	rootCmd.AddCommand(recommendCmd(opts))
	rootCmd.AddCommand(queueCmd(opts))
	rootCmd.AddCommand(weakestCmd(opts))
	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(lessonCmd(opts))

	return rootCmd
}
