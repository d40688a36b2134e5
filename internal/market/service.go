package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Cache persists kline series between runs so that backtests do not hit the
// quote API for data that is already fresh.
type Cache interface {
	// Load returns the cached series and stock name, or an empty series
	// when nothing is cached.
	Load(stockCode string, period Period) (string, Series, error)
	Save(stockCode, stockName string, period Period, bars Series) error
}

// Service resolves complete kline data for a stock, going through the cache
// first and falling back to the quote API.
type Service struct {
	client *Client
	cache  Cache
	now    func() time.Time
	log    *slog.Logger
}

// NewService creates a Service. cache may be nil, in which case every call
// fetches from the quote API.
func NewService(client *Client, cache Cache, log *slog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		now:    time.Now,
		log:    log,
	}
}

// GetKline returns daily, weekly, and monthly series for the stock. When
// saveOffline is set, fresh cached series are used as-is and refetched
// series are written back to the cache. A stock with no daily data at all
// is an error; missing weekly or monthly data only disables the strategies
// that reference it.
func (s *Service) GetKline(ctx context.Context, stockCode string, saveOffline bool) (*Kline, error) {
	k := &Kline{StockCode: stockCode}
	now := s.now()

	for _, period := range Periods {
		var cached Series
		if saveOffline && s.cache != nil {
			name, bars, err := s.cache.Load(stockCode, period)
			if err != nil {
				s.log.Warn("loading cached kline failed", "stock_code", stockCode, "period", period, "error", err)
			} else {
				cached = bars
				if name != "" && k.StockName == "" {
					k.StockName = name
				}
			}
			if cached.UpToDate(now) {
				s.setSeries(k, period, cached)
				continue
			}
		}

		name, bars, err := s.client.FetchKline(ctx, stockCode, period)
		if err != nil {
			if len(cached) > 0 {
				s.log.Warn("quote API unavailable, using stale cache", "stock_code", stockCode, "period", period, "error", err)
				s.setSeries(k, period, cached)
				continue
			}
			s.log.Warn("fetching kline failed", "stock_code", stockCode, "period", period, "error", err)
			continue
		}
		if name != "" {
			k.StockName = name
		}
		s.setSeries(k, period, bars)

		if saveOffline && s.cache != nil {
			if err := s.cache.Save(stockCode, k.StockName, period, bars); err != nil {
				s.log.Warn("caching kline failed", "stock_code", stockCode, "period", period, "error", err)
			}
		}
	}

	if len(k.Daily) == 0 {
		return nil, fmt.Errorf("no daily kline data for %s", stockCode)
	}
	if k.StockName == "" {
		k.StockName = stockCode
	}
	return k, nil
}

func (s *Service) setSeries(k *Kline, period Period, bars Series) {
	switch period {
	case PeriodDaily:
		k.Daily = bars
	case PeriodWeekly:
		k.Weekly = bars
	case PeriodMonthly:
		k.Monthly = bars
	}
}
