package backtest

import "astock/pkg/astock"

// computeStats summarizes one stock's trades. finalCapital is the capital
// remaining after the run, which differs from InitialCapital plus profit
// only by floating point noise.
func computeStats(trades []astock.Trade, finalCapital float64) astock.Stats {
	if len(trades) == 0 {
		return astock.Stats{}
	}

	var winCount int
	var totalProfit, totalHoldDays float64
	for _, t := range trades {
		if t.Profit > 0 {
			winCount++
		}
		totalProfit += t.Profit
		totalHoldDays += float64(t.HoldDays)
	}

	total := len(trades)
	return astock.Stats{
		TotalTrades:    total,
		WinCount:       winCount,
		LossCount:      total - winCount,
		WinRate:        round2(float64(winCount) / float64(total) * 100),
		TotalReturn:    round2(totalProfit),
		TotalReturnPct: round2((finalCapital - InitialCapital) / InitialCapital * 100),
		FinalCapital:   round2(finalCapital),
		AvgHoldDays:    round1(totalHoldDays / float64(total)),
	}
}

// CombinedStats aggregates trades across all result groups as if they were
// one portfolio with the standard initial capital.
func CombinedStats(groups []astock.ResultGroup) astock.Stats {
	var trades []astock.Trade
	for _, g := range groups {
		trades = append(trades, g.Trades...)
	}
	if len(trades) == 0 {
		return astock.Stats{}
	}

	var winCount int
	var totalProfit, totalHoldDays float64
	for _, t := range trades {
		if t.Profit > 0 {
			winCount++
		}
		totalProfit += t.Profit
		totalHoldDays += float64(t.HoldDays)
	}

	total := len(trades)
	return astock.Stats{
		TotalTrades:    total,
		WinCount:       winCount,
		LossCount:      total - winCount,
		WinRate:        round2(float64(winCount) / float64(total) * 100),
		TotalReturn:    round2(totalProfit),
		TotalReturnPct: round2(totalProfit / InitialCapital * 100),
		FinalCapital:   round2(InitialCapital + totalProfit),
		AvgHoldDays:    round1(totalHoldDays / float64(total)),
	}
}
