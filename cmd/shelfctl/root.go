package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "shelfctl",
	Short:         "Operator tool for the studyshelf service",
	SilenceUsage:  true,
}
