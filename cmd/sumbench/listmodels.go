package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sumbench/internal/registry"
	"sumbench/pkg/types"
)

func newListModelsCmd(a *app) *cobra.Command {
	var (
		onlyAvailable bool
		small         bool
		large         bool
	)
	cmd := &cobra.Command{
		Use:   "list-models",
		Short: "List catalog models and local availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := registry.Filter{OnlyAvailable: onlyAvailable}
			if small && !large {
				f.Size = types.SizeSmall
			}
			if large && !small {
				f.Size = types.SizeLarge
			}
			rows := a.mgr.ListModels(f)
			tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tEXPECTED\tAVAILABLE\tSTATE")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f GB\t%v\t%s\n",
					row.ID, row.Name, row.Size, row.ExpectedGB, row.Available, row.State)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&onlyAvailable, "only-available", false, "Hide models without local weights")
	cmd.Flags().BoolVar(&small, "small", false, "Only small models")
	cmd.Flags().BoolVar(&large, "large", false, "Only large models")
	return cmd
}
