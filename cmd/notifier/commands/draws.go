package commands

import (
	"fmt"
	"os"

	"draw_notification_bot/internal/app"
	"draw_notification_bot/internal/infra/logger"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var drawsLimit int

func init() {
	drawsCmd.Flags().IntVarP(&drawsLimit, "limit", "n", 10, "number of draws to print (0 for all)")
	rootCmd.AddCommand(drawsCmd)
}

var drawsCmd = &cobra.Command{
	Use:   "draws",
	Short: "Prints the latest draws after normalization. Does not read or change the notification state.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := app.NewDrawUpdateNotifier(buildSources(cfg), nil, nil, logger.Component("draws"), app.Options{})
		records, err := loader.LoadLatestRecords(cmd.Context())
		if err != nil {
			return err
		}
		if drawsLimit > 0 && len(records) > drawsLimit {
			records = records[:drawsLimit]
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Draw #", "Date", "Category", "ITAs Issued", "CRS Score"})
		for _, r := range records {
			t.AppendRow(table.Row{r.DrawNumber, r.DateString(), r.Category, humanize.Comma(int64(r.ITAsIssued)), r.CRSScore})
		}
		t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d draw(s)", len(records))})
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
