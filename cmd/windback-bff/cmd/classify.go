package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/windbackhq/windback-bff/guard"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <path>...",
	Short: "Show how the route guard treats page paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := guard.DefaultRules()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tCLASS\tNO SESSION\tWITH SESSION")
		for _, p := range args {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p, rules.Classify(p),
				describe(rules.Decide(p, false)), describe(rules.Decide(p, true)))
		}
		return tw.Flush()
	},
}

func describe(d guard.Decision) string {
	if d.Allowed() {
		return "allow"
	}
	return "redirect " + d.Target
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
