package market

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Field file names the loader recognises, matching the export convention of
// the combined-frame layout: one CSV per field, first column the date,
// remaining columns one per symbol.
var fieldFiles = map[string]string{
	"daily_opens":   "opens",
	"daily_highs":   "highs",
	"daily_lows":    "lows",
	"daily_closes":  "closes",
	"daily_volumes": "volumes",
}

// LoadCSVDir reads a directory of daily price CSVs into a Dataset. Two
// layouts are recognised: combined per-field frames (daily_closes.csv must
// be present, the other fields are optional), or one OHLCV file per symbol
// (date,open,high,low,close[,volume] headers, file name = symbol) when no
// per-field file exists. Rows are re-sorted by date; columns forward-fill
// interior gaps so every symbol holds its last seen price.
func LoadCSVDir(dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("market: read data dir: %w", err)
	}

	ds := &Dataset{}
	sawField := false
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".csv")
		field, ok := fieldFiles[name]
		if !ok {
			continue
		}
		sawField = true
		f, err := loadFrameCSV(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("market: %s: %w", e.Name(), err)
		}
		f.ForwardFill()
		switch field {
		case "opens":
			ds.Opens = f
		case "highs":
			ds.Highs = f
		case "lows":
			ds.Lows = f
		case "closes":
			ds.Closes = f
		case "volumes":
			ds.Volumes = f
		}
	}

	if !sawField {
		return loadSymbolCSVs(dir, entries)
	}
	if ds.Closes == nil {
		return nil, fmt.Errorf("market: ensure there is a daily_closes.csv in %s", dir)
	}
	return ds, nil
}

// ohlcvFields maps per-symbol CSV header names to dataset fields. date must
// be the first column; volume is optional.
var ohlcvFields = map[string]int{"open": 0, "high": 1, "low": 2, "close": 3, "volume": 4}

func loadSymbolCSVs(dir string, entries []os.DirEntry) (*Dataset, error) {
	type bar struct {
		vals [5]float64
		has  [5]bool
	}
	series := map[string]map[time.Time]bar{}
	dateSet := map[time.Time]struct{}{}
	anyVolume := false

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		fh, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("market: %s: %w", e.Name(), err)
		}
		records, err := csv.NewReader(fh).ReadAll()
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("market: %s: %w", e.Name(), err)
		}
		if len(records) < 2 || len(records[0]) < 2 || !strings.EqualFold(records[0][0], "date") {
			continue
		}
		cols := map[int]int{}
		for i, h := range records[0][1:] {
			if fi, ok := ohlcvFields[strings.ToLower(strings.TrimSpace(h))]; ok {
				cols[i+1] = fi
			}
		}
		if len(cols) == 0 {
			continue
		}
		symbol := strings.TrimSuffix(e.Name(), ".csv")
		bars := map[time.Time]bar{}
		for _, rec := range records[1:] {
			d, err := parseDate(rec[0])
			if err != nil {
				return nil, fmt.Errorf("market: %s: %w", e.Name(), err)
			}
			var b bar
			for ci, fi := range cols {
				if ci >= len(rec) || rec[ci] == "" {
					continue
				}
				v, err := strconv.ParseFloat(rec[ci], 64)
				if err != nil {
					return nil, fmt.Errorf("market: %s row %s: %w", e.Name(), rec[0], err)
				}
				b.vals[fi] = v
				b.has[fi] = true
				if fi == 4 {
					anyVolume = true
				}
			}
			bars[d] = b
			dateSet[d] = struct{}{}
		}
		series[symbol] = bars
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("market: no daily_closes.csv or per-symbol OHLCV files in %s", dir)
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	symbols := make([]string, 0, len(series))
	for s := range series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	frames := [5]*Frame{}
	for fi := range frames {
		if fi == 4 && !anyVolume {
			break
		}
		frames[fi] = NewFrame(dates, symbols)
	}
	for s, bars := range series {
		for d, b := range bars {
			for fi := 0; fi < 5; fi++ {
				if b.has[fi] && frames[fi] != nil {
					frames[fi].Set(d, s, b.vals[fi])
				}
			}
		}
	}
	ds := &Dataset{Opens: frames[0], Highs: frames[1], Lows: frames[2], Closes: frames[3], Volumes: frames[4]}
	for _, f := range []*Frame{ds.Opens, ds.Highs, ds.Lows, ds.Closes, ds.Volumes} {
		if f != nil {
			f.ForwardFill()
		}
	}
	return ds, nil
}

func loadFrameCSV(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("need a date column and at least one symbol column")
	}
	symbols := header[1:]

	type row struct {
		date time.Time
		vals []string
	}
	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		d, err := parseDate(rec[0])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{date: d, vals: rec[1:]})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	dates := make([]time.Time, len(rows))
	for i, r := range rows {
		dates[i] = r.date
	}

	f := NewFrame(dates, symbols)
	for _, r := range rows {
		for j, s := range symbols {
			if j >= len(r.vals) || r.vals[j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(r.vals[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %s col %s: %w", r.date.Format("2006-01-02"), s, err)
			}
			f.Set(r.date, s, v)
		}
	}
	return f, nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
