package cmd

import (
	"ttpwatch/cmd/ttpwatch/utils"
	"ttpwatch/services/slotwatch"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the known enrollment centers.",
	Run: func(cmd *cobra.Command, args []string) {
		dir := slotwatch.DefaultDirectory()

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Id", "Name"})
		for _, id := range dir.Ids() {
			t.AppendRow(table.Row{id, dir.Name(id)})
		}
		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}
