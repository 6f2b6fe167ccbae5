package report

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/optionsim/cli/config"
	"github.com/rustyeddy/optionsim/journal"
)

func New(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect a recorded SQLite journal",
	}

	cmd.AddCommand(
		newFillsCmd(rc),
		newSnapshotsCmd(rc),
	)

	return cmd
}

func newFillsCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "fills",
		Short: "List recorded buy/sell fills in emission order",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(rc.DBPath)
			if err != nil {
				return err
			}
			defer j.Close()

			fills, err := j.ListFills()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Action", "Pos", "Symbol", "Price", "Qty", "Cost", "Revenue", "P/L")
			for _, f := range fills {
				table.Append(
					f.Action,
					fmt.Sprintf("%d", f.PositionID),
					f.Symbol,
					f.Price.StringFixed(4),
					fmt.Sprintf("%d", f.Qty),
					f.Cost.StringFixed(2),
					f.Revenue.StringFixed(2),
					f.RealizedPL.StringFixed(2),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newSnapshotsCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List the recorded valuation series",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(rc.DBPath)
			if err != nil {
				return err
			}
			defer j.Close()

			snaps, err := j.ListSnapshots()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Time", "Cash", "Open", "Portfolio Value", "Start Cash")
			for _, s := range snaps {
				table.Append(
					s.TimeLabel,
					s.Cash.StringFixed(2),
					fmt.Sprintf("%d", s.OpenPositions),
					s.PortfolioValue.StringFixed(2),
					s.StartingCash.StringFixed(2),
				)
			}
			table.Render()
			return nil
		},
	}
}
