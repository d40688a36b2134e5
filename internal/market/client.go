package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"astock/internal/util"
)

// kltCodes maps kline periods to the quote API period codes.
var kltCodes = map[Period]string{
	PeriodDaily:   "101",
	PeriodWeekly:  "102",
	PeriodMonthly: "103",
}

// Client fetches forward-adjusted kline data from an eastmoney-style quote
// API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *util.RateLimiter
	maxRetries int
	log        *slog.Logger
}

// NewClient creates a quote API client. ratePerMin limits requests per
// minute; a non-positive value disables limiting.
func NewClient(baseURL string, ratePerMin, maxRetries int, log *slog.Logger) *Client {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:    util.NewRateLimiter(ratePerMin),
		maxRetries: maxRetries,
		log:        log,
	}
}

// klineResponse mirrors the quote API kline payload. Each kline entry is a
// comma-separated record:
//
//	date,open,close,high,low,volume,amount,amplitude,pct_chg,change,turnover
type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchKline retrieves the kline series for one stock and period, starting
// from 1990. It also returns the stock name reported by the API.
func (c *Client) FetchKline(ctx context.Context, stockCode string, period Period) (string, Series, error) {
	klt, ok := kltCodes[period]
	if !ok {
		return "", nil, fmt.Errorf("unknown kline period %q", period)
	}

	q := url.Values{}
	q.Set("secid", secID(stockCode))
	q.Set("klt", klt)
	q.Set("fqt", "1") // forward adjusted
	q.Set("beg", "19900101")
	q.Set("end", "20500101")
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")

	reqURL := c.baseURL + "/api/qt/stock/kline/get?" + q.Encode()

	var resp klineResponse
	err := util.Retry(ctx, c.maxRetries, time.Second, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.getJSON(ctx, reqURL, &resp)
	})
	if err != nil {
		return "", nil, fmt.Errorf("fetching %s kline for %s: %w", period, stockCode, err)
	}
	if resp.Data == nil {
		return "", nil, fmt.Errorf("no kline data for %s", stockCode)
	}

	bars := make(Series, 0, len(resp.Data.Klines))
	for _, line := range resp.Data.Klines {
		bar, err := parseKlineRecord(line)
		if err != nil {
			c.log.Warn("skipping malformed kline record", "stock_code", stockCode, "record", line, "error", err)
			continue
		}
		bars = append(bars, bar)
	}

	return resp.Data.Name, bars, nil
}

// FetchAll retrieves daily, weekly, and monthly klines for one stock.
func (c *Client) FetchAll(ctx context.Context, stockCode string) (*Kline, error) {
	k := &Kline{StockCode: stockCode}

	for _, period := range Periods {
		name, bars, err := c.FetchKline(ctx, stockCode, period)
		if err != nil {
			return nil, err
		}
		if name != "" {
			k.StockName = name
		}
		switch period {
		case PeriodDaily:
			k.Daily = bars
		case PeriodWeekly:
			k.Weekly = bars
		case PeriodMonthly:
			k.Monthly = bars
		}
	}
	if k.StockName == "" {
		k.StockName = stockCode
	}
	return k, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// secID converts a bare stock code into the exchange-prefixed security id
// the quote API expects. Shanghai codes start with 6, everything else
// (Shenzhen main board, SME, ChiNext) uses prefix 0.
func secID(stockCode string) string {
	if strings.HasPrefix(stockCode, "6") {
		return "1." + stockCode
	}
	return "0." + stockCode
}

func parseKlineRecord(line string) (Bar, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 9 {
		return Bar{}, fmt.Errorf("expected at least 9 fields, got %d", len(parts))
	}

	date, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return Bar{}, err
	}

	fields := make([]float64, 0, 8)
	for _, p := range parts[1:9] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Bar{}, err
		}
		fields = append(fields, v)
	}

	return Bar{
		Date:   date,
		Open:   fields[0],
		Close:  fields[1],
		High:   fields[2],
		Low:    fields[3],
		Volume: int64(fields[4]),
		Amount: fields[5],
		PctChg: fields[7],
	}, nil
}
