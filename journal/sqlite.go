package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, rebalance, starting_cash, final_wealth, total_profit, realised_rate, trades, wins, start, end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Rebalance, r.StartingCash, r.FinalWealth,
		r.TotalProfit, r.RealisedRate, r.Trades, r.Wins, r.Start, r.End,
	)
	return err
}

func (j *SQLite) RecordLot(l LotRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO lots
		(run_id, lot_id, direction, symbol, open_date, open_price, amount, open_value, open_reason,
		 close_date, close_price, close_value, close_reason, profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.RunID, l.LotID, l.Direction, l.Symbol, l.OpenDate, l.OpenPrice, l.Amount,
		l.OpenValue, l.OpenReason,
		l.CloseDate, l.ClosePrice, l.CloseValue, l.CloseReason, l.Profit,
	)
	return err
}

func (j *SQLite) RecordWealth(w WealthPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO wealth (run_id, date, wealth) VALUES (?, ?, ?)`,
		w.RunID, w.Date, w.Wealth,
	)
	return err
}

func (j *SQLite) RecordReport(r ReportRecord) error {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(`
		INSERT INTO report
		(run_id, combination, params, total_profit, realised_rate, yearly_std_dev, trades, wins)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Combination, string(params), r.TotalProfit, r.RealisedRate,
		r.YearlyStdDev, r.Trades, r.Wins,
	)
	return err
}

// ListLotsByRun returns the run's trade list in lot order.
func (j *SQLite) ListLotsByRun(runID string) ([]LotRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, lot_id, direction, symbol, open_date, open_price, amount, open_value, open_reason,
		       close_date, close_price, close_value, close_reason, profit
		FROM lots
		WHERE run_id = ?
		ORDER BY lot_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LotRecord
	for rows.Next() {
		var rec LotRecord
		if err := rows.Scan(
			&rec.RunID, &rec.LotID, &rec.Direction, &rec.Symbol,
			&rec.OpenDate, &rec.OpenPrice, &rec.Amount, &rec.OpenValue, &rec.OpenReason,
			&rec.CloseDate, &rec.ClosePrice, &rec.CloseValue, &rec.CloseReason, &rec.Profit,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord
	row := j.db.QueryRow(`
		SELECT run_id, created, strategy, rebalance, starting_cash, final_wealth, total_profit, realised_rate, trades, wins, start, end
		FROM runs
		WHERE run_id = ?`, runID)
	err := row.Scan(
		&rec.RunID, &rec.Created, &rec.Strategy, &rec.Rebalance,
		&rec.StartingCash, &rec.FinalWealth, &rec.TotalProfit, &rec.RealisedRate,
		&rec.Trades, &rec.Wins, &rec.Start, &rec.End,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
