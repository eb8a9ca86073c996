package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDaysCommand(root *rootOptions) *cobra.Command {
	var (
		zone   string
		offset float64
	)
	c := &cobra.Command{
		Use:   "days",
		Short: "Print local yesterday, today and tomorrow for a timezone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var off *float64
			if cmd.Flags().Changed("offset") {
				off = &offset
			}
			if zone == "" && off == nil {
				return fmt.Errorf("--tz or --offset is required")
			}
			svc, err := root.newService(cmd.Context(), "", "")
			if err != nil {
				return err
			}
			d, err := svc.DayAnchors(cmd.Context(), zone, off)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
	c.Flags().StringVar(&zone, "tz", "", "IANA timezone")
	c.Flags().Float64Var(&offset, "offset", 0, "fixed UTC offset in hours")
	return c
}
