package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/optionsim/market"
)

// CandidateFeed yields trade candidates one at a time, already ordered by
// as-of-date. Implementations should be deterministic and return
// (ok=false, err=nil) at EOF.
type CandidateFeed interface {
	Next() (c market.Candidate, ok bool, err error)
	Close() error
}

// CSVCandidatesFeed reads candidate rows:
//
//	symbol,as_of_date,expiry,last_price[,max_price_until_expiry]
//
// where dates are YYYY-MM-DD or RFC3339. A header row ("symbol,...") is
// allowed. Empty/short rows are skipped; malformed numerics are errors.
type CSVCandidatesFeed struct {
	f *os.File
	r *csv.Reader

	sawFirst bool
}

func NewCSVCandidatesFeed(path string) (*CSVCandidatesFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	return &CSVCandidatesFeed{f: f, r: r}, nil
}

func (f *CSVCandidatesFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *CSVCandidatesFeed) Next() (market.Candidate, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Candidate{}, false, nil
		}
		if err != nil {
			return market.Candidate{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "symbol") {
				continue
			}
		}

		c, ok, err := parseCandidateRow(row)
		if err != nil {
			return market.Candidate{}, false, err
		}
		if !ok {
			continue
		}
		return c, true, nil
	}
}

func parseCandidateRow(row []string) (market.Candidate, bool, error) {
	// Need at least: symbol,as_of_date,expiry,last_price
	if len(row) < 4 {
		return market.Candidate{}, false, nil
	}

	sym := strings.TrimSpace(row[0])
	if sym == "" {
		return market.Candidate{}, false, nil
	}

	asOf, err := market.ParseDate(strings.TrimSpace(row[1]))
	if err != nil {
		return market.Candidate{}, false, fmt.Errorf("bad as_of_date %q: %w", row[1], err)
	}
	expiry, err := market.ParseDate(strings.TrimSpace(row[2]))
	if err != nil {
		return market.Candidate{}, false, fmt.Errorf("bad expiry %q: %w", row[2], err)
	}

	last, err := decimal.NewFromString(strings.TrimSpace(row[3]))
	if err != nil {
		return market.Candidate{}, false, fmt.Errorf("bad last_price %q: %w", row[3], err)
	}

	var maxPx decimal.Decimal
	if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
		maxPx, err = decimal.NewFromString(strings.TrimSpace(row[4]))
		if err != nil {
			return market.Candidate{}, false, fmt.Errorf("bad max_price_until_expiry %q: %w", row[4], err)
		}
	}

	return market.Candidate{
		Symbol:              sym,
		AsOfDate:            asOf,
		Expiry:              expiry,
		LastPrice:           last,
		MaxPriceUntilExpiry: maxPx,
	}, true, nil
}
