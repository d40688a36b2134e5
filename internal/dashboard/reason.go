package dashboard

import "astock/pkg/astock"

// SellReason is the closed set of sell-reason categories the dashboard
// styles. Anything that is not a gain stop or a loss stop, including the
// end-of-backtest liquidation, falls into Expired.
type SellReason int

const (
	GainStop SellReason = iota
	LossStop
	Expired
)

// ParseSellReason maps a wire sell-reason string onto its category.
func ParseSellReason(s string) SellReason {
	switch s {
	case astock.ReasonGainStop:
		return GainStop
	case astock.ReasonLossStop:
		return LossStop
	default:
		return Expired
	}
}

// Label returns the canonical display label for the category.
func (r SellReason) Label() string {
	switch r {
	case GainStop:
		return astock.ReasonGainStop
	case LossStop:
		return astock.ReasonLossStop
	default:
		return astock.ReasonExpired
	}
}

// Class returns the style class for the category. Unrecognized wire values
// never fall through; they carry the expire class.
func (r SellReason) Class() string {
	switch r {
	case GainStop:
		return "reason-gain"
	case LossStop:
		return "reason-loss"
	default:
		return "reason-expire"
	}
}
