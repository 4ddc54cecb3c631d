package cmd

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(regionsCmd)
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the configured basin regions and their HUC identifiers.",
	Run: func(cmd *cobra.Command, args []string) {
		regions := service.Regions()
		names := make([]string, 0, len(regions))
		for name := range regions {
			names = append(names, name)
		}
		sort.Strings(names)

		t := newTable()
		t.AppendHeader(table.Row{"region", "basins", "huc ids"})
		for _, name := range names {
			ids := regions[name]
			t.AppendRow(table.Row{name, len(ids), strings.Join(ids, " ")})
		}
		t.Render()
	},
}
