package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zarinpal",
	Short: "Zarinpal gateway service",
	Long:  "A service that starts, verifies and audits Zarinpal checkouts over HTTP, gRPC and the command line.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
