// Package strategy parses and evaluates the dashboard strategy expressions:
// moving-average comparisons over daily, weekly, and monthly klines, and
// percent-change buy conditions.
package strategy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"astock/internal/market"
)

var (
	// maPattern matches moving-average references such as D5MA, W10MA-2.
	// The optional suffix is the bar offset back from the given date.
	maPattern = regexp.MustCompile(`([DWM])(\d+)MA(?:-(\d+))?`)

	// klinePattern matches percent-change conditions such as "DK < -2%".
	klinePattern = regexp.MustCompile(`([DWM]K)\s*([<>=!]+)\s*(-?\d+(?:\.\d+)?)\s*%?`)

	// repeatPattern matches repeated conditions such as "(D5MA > D30MA) * 3".
	repeatPattern = regexp.MustCompile(`\(([^()]+)\)\s*\*\s*(\d+)`)
)

// maPeriods maps the expression prefix to a kline period.
var maPeriods = map[string]market.Period{
	"D": market.PeriodDaily,
	"W": market.PeriodWeekly,
	"M": market.PeriodMonthly,
}

// klinePeriods maps the percent-change prefix to a kline period.
var klinePeriods = map[string]market.Period{
	"DK": market.PeriodDaily,
	"WK": market.PeriodWeekly,
	"MK": market.PeriodMonthly,
}

// ExpandRepeat rewrites repeated conditions into explicit conjunctions:
//
//	(D5MA > D30MA) * 3
//
// becomes
//
//	(D5MA > D30MA) && (D5MA-1 > D30MA-1) && (D5MA-2 > D30MA-2)
//
// Expansion runs until a fixed point so nested repeats resolve too.
func ExpandRepeat(expr string) string {
	for {
		expanded := repeatPattern.ReplaceAllStringFunc(expr, func(m string) string {
			sub := repeatPattern.FindStringSubmatch(m)
			inner, count := sub[1], sub[2]
			n, _ := strconv.Atoi(count)

			parts := make([]string, 0, n)
			for i := 0; i < n; i++ {
				if i == 0 {
					parts = append(parts, "("+inner+")")
					continue
				}
				shift := i
				shifted := maPattern.ReplaceAllStringFunc(inner, func(ref string) string {
					sub := maPattern.FindStringSubmatch(ref)
					offset := shift
					if sub[3] != "" {
						prev, _ := strconv.Atoi(sub[3])
						offset += prev
					}
					return fmt.Sprintf("%s%sMA-%d", sub[1], sub[2], offset)
				})
				parts = append(parts, "("+shifted+")")
			}
			return strings.Join(parts, " && ")
		})
		if expanded == expr {
			return expanded
		}
		expr = expanded
	}
}

// EvaluateKlineExpr evaluates a moving-average expression against the kline
// data as of date. An empty expression is trivially true. Insufficient
// history for any referenced moving average makes the whole expression
// false, matching the all-or-nothing resolution the dashboard relies on.
// A malformed expression is an error.
func EvaluateKlineExpr(expr string, k *market.Kline, date time.Time) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}

	expanded := ExpandRepeat(expr)

	// Resolve every referenced moving average up front.
	values := make(map[string]float64)
	for _, sub := range maPattern.FindAllStringSubmatch(expanded, -1) {
		ref := sub[0]
		if _, ok := values[ref]; ok {
			continue
		}
		period, _ := strconv.Atoi(sub[2])
		offset := 0
		if sub[3] != "" {
			offset, _ = strconv.Atoi(sub[3])
		}
		series := k.ByPeriod(maPeriods[sub[1]])
		v, ok := series.MAValue(date, period, offset)
		if !ok {
			return false, nil
		}
		values[ref] = v
	}

	toks, err := lex(expanded, values)
	if err != nil {
		return false, err
	}
	p := &parser{toks: toks}
	result, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("unexpected trailing input in %q", expr)
	}
	return result, nil
}

// EvaluateBuyCondition evaluates a percent-change buy condition such as
// "DK < -2%" against the kline data as of date. An empty or unrecognized
// condition does not veto a buy; a referenced series with no data does.
func EvaluateBuyCondition(cond string, k *market.Kline, date time.Time) bool {
	if strings.TrimSpace(cond) == "" {
		return true
	}

	sub := klinePattern.FindStringSubmatch(cond)
	if sub == nil {
		return true
	}

	series := k.ByPeriod(klinePeriods[sub[1]])
	pct, ok := series.PctChange(date)
	if !ok {
		return false
	}

	threshold, _ := strconv.ParseFloat(sub[3], 64)
	return compare(pct, sub[2], threshold)
}

func compare(left float64, op string, right float64) bool {
	switch op {
	case ">":
		return left > right
	case "<":
		return left < right
	case ">=":
		return left >= right
	case "<=":
		return left <= right
	case "==":
		return left == right
	case "!=":
		return left != right
	}
	return false
}

// ---------------------------------------------------------------------------
// Expression lexer and parser
// ---------------------------------------------------------------------------

type tokKind int

const (
	tokLParen tokKind = iota
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokOp    // comparison operator
	tokValue // resolved moving average or numeric literal
)

type token struct {
	kind tokKind
	text string
	val  float64
}

var numPattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

// lex tokenizes an expanded expression. Moving-average references are
// resolved through the values map built by the caller.
func lex(expr string, values map[string]float64) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case strings.HasPrefix(expr[i:], "&&"):
			toks = append(toks, token{kind: tokAnd})
			i += 2
		case strings.HasPrefix(expr[i:], "||"):
			toks = append(toks, token{kind: tokOr})
			i += 2
		case strings.HasPrefix(expr[i:], ">=") || strings.HasPrefix(expr[i:], "<=") ||
			strings.HasPrefix(expr[i:], "==") || strings.HasPrefix(expr[i:], "!="):
			toks = append(toks, token{kind: tokOp, text: expr[i : i+2]})
			i += 2
		case c == '>' || c == '<':
			toks = append(toks, token{kind: tokOp, text: string(c)})
			i++
		case c == '!':
			toks = append(toks, token{kind: tokNot})
			i++
		default:
			if loc := maPattern.FindStringIndex(expr[i:]); loc != nil && loc[0] == 0 {
				ref := expr[i : i+loc[1]]
				toks = append(toks, token{kind: tokValue, text: ref, val: values[ref]})
				i += loc[1]
				continue
			}
			if m := numPattern.FindString(expr[i:]); m != "" {
				v, _ := strconv.ParseFloat(m, 64)
				toks = append(toks, token{kind: tokValue, text: m, val: v})
				i += len(m)
				continue
			}
			return nil, fmt.Errorf("unexpected character %q in expression", c)
		}
	}
	return toks, nil
}

// parser evaluates the boolean grammar
//
//	or   := and ("||" and)*
//	and  := not ("&&" not)*
//	not  := "!" not | primary
//	prim := "(" or ")" | value op value
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseOr() (bool, error) {
	left, err := p.parseAnd()
	if err != nil {
		return false, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return false, err
		}
		left = left || right
	}
}

func (p *parser) parseAnd() (bool, error) {
	left, err := p.parseNot()
	if err != nil {
		return false, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return false, err
		}
		left = left && right
	}
}

func (p *parser) parseNot() (bool, error) {
	if t, ok := p.peek(); ok && t.kind == tokNot {
		p.pos++
		v, err := p.parseNot()
		return !v, err
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (bool, error) {
	t, ok := p.peek()
	if !ok {
		return false, fmt.Errorf("unexpected end of expression")
	}

	if t.kind == tokLParen {
		p.pos++
		v, err := p.parseOr()
		if err != nil {
			return false, err
		}
		if t, ok := p.peek(); !ok || t.kind != tokRParen {
			return false, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	if t.kind != tokValue {
		return false, fmt.Errorf("expected value, got %q", t.text)
	}
	left := t.val
	p.pos++

	op, ok := p.peek()
	if !ok || op.kind != tokOp {
		return false, fmt.Errorf("expected comparison operator after %q", t.text)
	}
	p.pos++

	rt, ok := p.peek()
	if !ok || rt.kind != tokValue {
		return false, fmt.Errorf("expected value after operator %q", op.text)
	}
	p.pos++

	return compare(left, op.text, rt.val), nil
}
