package journal

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
)

// CSV writes lots, wealth, and report rows to plain CSV files. Any path may
// be empty, in which case that record type is dropped.
type CSV struct {
	lots, wealth, report *csv.Writer
	files                []*os.File
}

func NewCSV(lotsPath, wealthPath, reportPath string) (*CSV, error) {
	j := &CSV{}

	open := func(path string, header []string) (*csv.Writer, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.lots, err = open(lotsPath, []string{
		"run_id", "lot_id", "long_or_short", "symbol",
		"open_date", "open_price", "amount", "open_value", "open_reason",
		"close_date", "close_price", "close_value", "close_reason", "profit",
	}); err != nil {
		return nil, err
	}
	if j.wealth, err = open(wealthPath, []string{"run_id", "date", "wealth"}); err != nil {
		return nil, err
	}
	if j.report, err = open(reportPath, []string{
		"run_id", "test_number", "params",
		"total_profit", "realised_rate", "yearly_std_dev", "trades", "wins",
	}); err != nil {
		return nil, err
	}
	return j, nil
}

// RecordRun is a no-op for CSV; the run summary lives in the report or the
// caller's output.
func (j *CSV) RecordRun(RunRecord) error { return nil }

func (j *CSV) RecordLot(l LotRecord) error {
	if j.lots == nil {
		return nil
	}
	row := []string{
		l.RunID,
		strconv.Itoa(l.LotID),
		l.Direction,
		l.Symbol,
		l.OpenDate.Format("2006-01-02"),
		f(l.OpenPrice),
		strconv.Itoa(l.Amount),
		f(l.OpenValue),
		l.OpenReason,
		"", "", "", "", "",
	}
	if l.CloseDate != nil {
		row[9] = l.CloseDate.Format("2006-01-02")
		row[10] = f(*l.ClosePrice)
		row[11] = f(*l.CloseValue)
		row[12] = *l.CloseReason
		row[13] = f(*l.Profit)
	}
	if err := j.lots.Write(row); err != nil {
		return err
	}
	j.lots.Flush()
	return j.lots.Error()
}

func (j *CSV) RecordWealth(w WealthPoint) error {
	if j.wealth == nil {
		return nil
	}
	if err := j.wealth.Write([]string{
		w.RunID,
		w.Date.Format("2006-01-02"),
		f(w.Wealth),
	}); err != nil {
		return err
	}
	j.wealth.Flush()
	return j.wealth.Error()
}

func (j *CSV) RecordReport(r ReportRecord) error {
	if j.report == nil {
		return nil
	}
	params, err := json.Marshal(r.Params)
	if err != nil {
		return err
	}
	if err := j.report.Write([]string{
		r.RunID,
		strconv.Itoa(r.Combination),
		string(params),
		f(r.TotalProfit),
		f(r.RealisedRate),
		f(r.YearlyStdDev),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
	}); err != nil {
		return err
	}
	j.report.Flush()
	return j.report.Error()
}

func (j *CSV) Close() error {
	var firstErr error
	for _, f := range j.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
