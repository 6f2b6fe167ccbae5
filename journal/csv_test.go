package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	historyPath := filepath.Join(dir, "history.csv")
	snapshotsPath := filepath.Join(dir, "snapshots.csv")

	j, err := NewCSV(historyPath, snapshotsPath)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	historyData, err := os.ReadFile(historyPath)
	assert.NoError(t, err)
	snapshotsData, err := os.ReadFile(snapshotsPath)
	assert.NoError(t, err)

	historyReader := csv.NewReader(strings.NewReader(string(historyData)))
	historyHeader, err := historyReader.Read()
	assert.NoError(t, err)

	snapshotsReader := csv.NewReader(strings.NewReader(string(snapshotsData)))
	snapshotsHeader, err := snapshotsReader.Read()
	assert.NoError(t, err)

	wantHistory := []string{"action", "pos_id", "symbol", "price", "qty", "cost", "revenue", "realized_pnl"}
	assert.Equal(t, wantHistory, historyHeader)

	wantSnapshots := []string{"time_label", "cash", "open_positions", "portfolio_value", "starting_cash"}
	assert.Equal(t, wantSnapshots, snapshotsHeader)
}

func openFDCount(t *testing.T) int {
	t.Helper()

	ents, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(ents)
}

func TestCSVJournalBadSnapshotsPath(t *testing.T) {
	dir := t.TempDir()

	// Passing a directory for the snapshots file fails the second
	// create; the already-open history handle must not leak.
	before := openFDCount(t)
	_, err := NewCSV(filepath.Join(dir, "history.csv"), dir)
	assert.Error(t, err)
	assert.Equal(t, before, openFDCount(t))
}

func TestCSVJournalHeaderWriteError(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this system")
	}
	dir := t.TempDir()

	// /dev/full accepts the open but fails the header flush; both file
	// handles must be closed on the way out.
	before := openFDCount(t)
	_, err := NewCSV("/dev/full", filepath.Join(dir, "snapshots.csv"))
	assert.Error(t, err)
	assert.Equal(t, before, openFDCount(t))
}

func TestCSVJournalRecordFill(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	historyPath := filepath.Join(dir, "history.csv")
	snapshotsPath := filepath.Join(dir, "snapshots.csv")

	j, err := NewCSV(historyPath, snapshotsPath)
	assert.NoError(t, err)

	err = j.RecordFill(FillRecord{
		Action:     ActionSell,
		PositionID: 7,
		Symbol:     "SPX_5000_20260918",
		Price:      decimal.NewFromFloat(11.976),
		Qty:        3,
		Revenue:    decimal.NewFromFloat(3591.8),
		RealizedPL: decimal.NewFromFloat(-12.5),
	})
	assert.NoError(t, err)

	assert.NoError(t, j.Close())

	historyData, err := os.ReadFile(historyPath)
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(historyData)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{
		"sell",
		"7",
		"SPX_5000_20260918",
		"11.976",
		"3",
		"0",
		"3591.8",
		"-12.5",
	}
	assert.Equal(t, want, row)
}

func TestCSVJournalRecordSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	historyPath := filepath.Join(dir, "history.csv")
	snapshotsPath := filepath.Join(dir, "snapshots.csv")

	j, err := NewCSV(historyPath, snapshotsPath)
	assert.NoError(t, err)

	err = j.RecordSnapshot(SnapshotRecord{
		TimeLabel:      "2026-09-01",
		Cash:           decimal.NewFromFloat(98999),
		OpenPositions:  2,
		PortfolioValue: decimal.NewFromFloat(101399.5),
		StartingCash:   decimal.NewFromInt(100000),
	})
	assert.NoError(t, err)

	assert.NoError(t, j.Close())

	snapshotsData, err := os.ReadFile(snapshotsPath)
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(snapshotsData)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{
		"2026-09-01",
		"98999",
		"2",
		"101399.5",
		"100000",
	}
	assert.Equal(t, want, row)
}
