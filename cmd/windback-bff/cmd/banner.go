package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

const banner = `
 __        ___           _ _                _
 \ \      / (_)_ __   __| | |__   __ _  ___| | __
  \ \ /\ / /| | '_ \ / _` + "`" + ` | '_ \ / _` + "`" + ` |/ __| |/ /
   \ V  V / | | | | | (_| | |_) | (_| | (__|   <
    \_/\_/  |_|_| |_|\__,_|_.__/ \__,_|\___|_|\_\
`

func printBanner(w io.Writer) {
	fmt.Fprintf(w, "\x1b[34m%s\x1b[0m", banner)
	fmt.Fprintf(w, "\x1b[32m  Web BFF - Version %s\x1b[0m\n\n", Version)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
