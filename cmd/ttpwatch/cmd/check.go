package cmd

import (
	"context"
	"errors"
	"strings"
	"ttpwatch/cmd/ttpwatch/utils"
	"ttpwatch/lib/telemetry"
	"ttpwatch/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single sweep and print the result without notifying.",
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		svc, err := buildService(cfg)
		if err != nil {
			serviceutil.Fatal("init slot watch", err)
		}

		report := svc.Sweep(context.Background())

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Location", "Date", "Times", "Changed", "Error"})
		for _, loc := range report.Locations {
			if len(loc.Observations) == 0 {
				t.AppendRow(table.Row{loc.LocationName, "", "", loc.Changed, loc.Err})
				continue
			}
			for _, obs := range loc.Observations {
				t.AppendRow(table.Row{
					loc.LocationName,
					obs.Date,
					strings.Join(obs.Times, ", "),
					loc.Changed,
					loc.Err,
				})
			}
		}
		t.Render()

		if report.Failed() {
			serviceutil.Fatal("sweep failed", errors.New(report.Err))
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
