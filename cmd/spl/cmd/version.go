package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags; it defaults to "dev" for
// a plain `go build`.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spl version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
