package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/scheduler"
)

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "Print the duration and padding rules for every visit type",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := scheduler.DefaultPolicies()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "VISIT TYPE\tMIN\tRECOMMENDED\tMAX\tPADDING\tPREFERRED HOURS")
			for _, vt := range table.Categories() {
				p := table.Policy(vt)
				hours := make([]string, 0, len(p.PreferredHours))
				for _, r := range p.PreferredHours {
					hours = append(hours, fmt.Sprintf("%02d-%02d", r.Start, r.End))
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d+%d\t%s\n",
					vt, p.MinDuration, p.RecommendedDuration, p.MaxDuration,
					p.PaddingBefore, p.PaddingAfter, strings.Join(hours, ","))
			}
			return tw.Flush()
		},
	}
}
