package cmd

import (
	"fmt"
	"os"
	"sort"

	"hydroclip/services/basinexport"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runAll bool

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false, "export every configured region")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [region]",
	Short: "Select a region's watershed boundaries, clip the DEM, and submit the exports.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var regions []string
		switch {
		case runAll:
			for name := range service.Regions() {
				regions = append(regions, name)
			}
			sort.Strings(regions)
		case len(args) == 1:
			regions = args
		default:
			fmt.Fprintln(os.Stderr, "specify a region or pass --all")
			os.Exit(1)
		}

		failed := false
		for _, region := range regions {
			report, err := service.ExportRegion(cmd.Context(), region)
			printUnknownIds(report)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %s\n", region, err.Error())
				failed = true
				continue
			}

			fmt.Printf(
				"%s: matched %d of %d basins, run %s\n",
				region, report.Matched, report.Requested, report.RunId,
			)
			fmt.Printf("  dem export:       %s (%s)\n", report.DemTask.Id, report.DemTask.State)
			fmt.Printf("  flowlines export: %s (%s)\n", report.FlowlinesTask.Id, report.FlowlinesTask.State)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func printUnknownIds(report basinexport.RegionReport) {
	if len(report.Unknown) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "%s: %d HUC id(s) not found in the catalog\n", report.Region, len(report.Unknown))
	t := newTable()
	t.AppendHeader(table.Row{"unknown id", "closest match", "similarity"})
	for _, u := range report.Unknown {
		t.AppendRow(table.Row{u.Id, u.Suggestion, fmt.Sprintf("%.2f", u.Similarity)})
	}
	t.Render()
}
