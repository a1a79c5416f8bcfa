package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vitrine %s\n", appVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
