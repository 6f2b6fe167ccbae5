package backtest

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	bt "github.com/rustyeddy/optionsim/backtest"
	appcfg "github.com/rustyeddy/optionsim/config"
	"github.com/rustyeddy/optionsim/cli/config"
	"github.com/rustyeddy/optionsim/journal"
	"github.com/rustyeddy/optionsim/sim"
)

func New(rc *config.RootConfig) *cobra.Command {
	var (
		candidatesPath string
		journalType    string
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the execution simulator over a candidate file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}
			if journalType != "" {
				cfg.Journal.Type = journalType
			}
			if cfg.Journal.Type == "sqlite" && rc.DBPath != "" {
				cfg.Journal.DBPath = rc.DBPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			j, sqlj, err := openJournal(cfg)
			if err != nil {
				return err
			}

			feed, err := bt.NewCSVCandidatesFeed(candidatesPath)
			if err != nil {
				j.Close()
				return fmt.Errorf("open candidates: %w", err)
			}

			ledger := sim.NewLedger(cfg.StartingCash(), cfg.Model(), j)
			runner := &bt.Runner{
				Ledger: ledger,
				Feed:   feed,
				Options: bt.RunnerOptions{
					BudgetPct:    cfg.BudgetPct(),
					MaxContracts: cfg.Sizing.MaxContractsPerTrade,
				},
			}

			res, err := runner.Run(cmd.Context(), sqlj)
			if err != nil {
				j.Close()
				return err
			}
			if err := j.Close(); err != nil {
				return err
			}

			printResult(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "Candidate CSV file (required)")
	cmd.Flags().StringVar(&journalType, "journal", "", "Override journal type: csv|sqlite|parquet")
	cmd.MarkFlagRequired("candidates")

	return cmd
}

func loadConfig(rc *config.RootConfig) (*appcfg.Config, error) {
	if rc.ConfigPath == "" {
		return appcfg.Default(), nil
	}
	return appcfg.LoadFromFile(rc.ConfigPath)
}

// openJournal builds the configured journal. The second return is non-nil
// only for sqlite, where the runner can compute a closed-trade summary.
func openJournal(cfg *appcfg.Config) (journal.Journal, *journal.SQLiteJournal, error) {
	switch cfg.Journal.Type {
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.HistoryFile, cfg.Journal.SnapshotsFile)
		return j, nil, err
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		return j, j, err
	case "parquet":
		return journal.NewParquet(cfg.Journal.HistoryFile, cfg.Journal.SnapshotsFile), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}

func printResult(res bt.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Run", "Start Cash", "Final Cash", "Net P/L", "Return %", "Candidates", "Opened", "Retried", "Skipped", "Trades", "W/L")
	table.Append(
		res.RunID,
		res.StartingCash.StringFixed(2),
		res.FinalCash.StringFixed(2),
		res.NetPL.StringFixed(2),
		res.ReturnPct.StringFixed(2),
		fmt.Sprintf("%d", res.Candidates),
		fmt.Sprintf("%d", res.Opened),
		fmt.Sprintf("%d", res.Retried),
		fmt.Sprintf("%d", res.Skipped),
		fmt.Sprintf("%d", res.Trades),
		fmt.Sprintf("%d/%d", res.Wins, res.Losses),
	)
	table.Render()
}
