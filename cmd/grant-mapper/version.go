package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of grant-mapper",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grant-mapper %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
