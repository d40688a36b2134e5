package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"astock/internal/market"
)

// Compile-time interface check.
var _ market.Cache = (*ParquetCache)(nil)

// ParquetCache stores kline series as Parquet files on disk, one file per
// stock and period:
//
//	<DataDir>/<stock_code>/<period>.parquet
type ParquetCache struct {
	DataDir string
}

// NewParquetCache creates a ParquetCache rooted at the given data directory.
func NewParquetCache(dataDir string) *ParquetCache {
	return &ParquetCache{DataDir: dataDir}
}

// KlineRecord is the Parquet schema for cached kline bars. The stock name is
// denormalized into every record so the cache can serve it without a second
// lookup.
type KlineRecord struct {
	StockCode string  `parquet:"stock_code"`
	StockName string  `parquet:"stock_name"`
	Date      int64   `parquet:"date,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	Close     float64 `parquet:"close"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Volume    int64   `parquet:"volume"`
	Amount    float64 `parquet:"amount"`
	PctChg    float64 `parquet:"pct_chg"`
}

// Load reads the cached series for one stock and period. A missing file is
// not an error; it returns an empty series.
func (c *ParquetCache) Load(stockCode string, period market.Period) (string, market.Series, error) {
	path := c.klinePath(stockCode, period)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil, nil
	}

	records, err := parquet.ReadFile[KlineRecord](path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var name string
	bars := make(market.Series, 0, len(records))
	for _, r := range records {
		if name == "" {
			name = r.StockName
		}
		bars = append(bars, market.Bar{
			Date:   time.UnixMilli(r.Date).Local(),
			Open:   r.Open,
			Close:  r.Close,
			High:   r.High,
			Low:    r.Low,
			Volume: r.Volume,
			Amount: r.Amount,
			PctChg: r.PctChg,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return name, bars, nil
}

// Save merges the given bars into the cached series for one stock and
// period, deduplicating by date with new bars winning.
func (c *ParquetCache) Save(stockCode, stockName string, period market.Period, bars market.Series) error {
	if len(bars) == 0 {
		return nil
	}
	path := c.klinePath(stockCode, period)

	var existing []KlineRecord
	if _, err := os.Stat(path); err == nil {
		existing, _ = parquet.ReadFile[KlineRecord](path)
	}

	incoming := make([]KlineRecord, 0, len(bars))
	for _, b := range bars {
		incoming = append(incoming, KlineRecord{
			StockCode: stockCode,
			StockName: stockName,
			Date:      b.Date.UnixMilli(),
			Open:      b.Open,
			Close:     b.Close,
			High:      b.High,
			Low:       b.Low,
			Volume:    b.Volume,
			Amount:    b.Amount,
			PctChg:    b.PctChg,
		})
	}
	merged := mergeKlineRecords(existing, incoming)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, merged); err != nil {
		return fmt.Errorf("writing %s kline for %s: %w", period, stockCode, err)
	}
	return nil
}

// klinePath returns the filesystem path for a cached kline file.
func (c *ParquetCache) klinePath(stockCode string, period market.Period) string {
	return filepath.Join(c.DataDir, stockCode, string(period)+".parquet")
}

// mergeKlineRecords deduplicates records by date, preferring incoming
// records over existing ones. Results are sorted by date.
func mergeKlineRecords(existing, incoming []KlineRecord) []KlineRecord {
	seen := make(map[int64]KlineRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Date] = r
	}
	for _, r := range incoming {
		seen[r.Date] = r
	}

	merged := make([]KlineRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged
}
