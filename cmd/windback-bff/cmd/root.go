package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "windback-bff",
	Short: "Windback web backend-for-frontend",
	Long: `Serves the Windback web app and its /api boundary: the session cookie,
the route guard and the authenticated proxy to the private Windback API.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
