package cmd

import (
	"fmt"
	"os"
	"time"

	"hydroclip/services/basinexport/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll the platform once for the recorded export jobs and print their states.",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := service.RefreshJobs(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		jobs, err := service.ListJobs(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		renderJobs(jobs)
	},
}

func renderJobs(jobs []db.ExportJob) {
	t := newTable()
	t.AppendHeader(table.Row{"task", "region", "kind", "state", "updated", "output"})
	for _, job := range jobs {
		output := job.DestinationUri
		if job.Error != "" {
			output = job.Error
		}
		t.AppendRow(table.Row{
			job.TaskId,
			job.Region,
			job.Kind,
			job.State,
			time.Unix(job.UpdatedAt, 0).Format(time.RFC3339),
			output,
		})
	}
	t.Render()
}
