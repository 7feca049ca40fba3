package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crypto-sentinel",
	Short: "A CLI for the crypto sentiment pipeline services",
	Long: `Crypto Sentinel harvests crypto chatter, scores its sentiment and
correlates it with market moves. Run pipeline-service to serve the API
and migrate to manage the workflow tables.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
