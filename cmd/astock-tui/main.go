package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"astock/internal/backtest"
	"astock/internal/dashboard"
	"astock/internal/util"
	"astock/pkg/astock"
)

// Styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	profitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	gainTagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	lossTagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	expireStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHdrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	summaryStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	checkOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	checkOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// A-share colors run opposite to US convention: red marks profit, green
// marks loss. profitStyle and lossStyle above follow that.

func reasonStyle(class string) lipgloss.Style {
	switch class {
	case "reason-gain":
		return gainTagStyle
	case "reason-loss":
		return lossTagStyle
	default:
		return expireStyle
	}
}

// Form field indexes.
const (
	fieldStockCode = iota
	fieldYears
	fieldKlineBuy
	fieldBuyCond
	fieldGain
	fieldLoss
	fieldPeriod
	fieldCount
)

// Messages.
type configLoadedMsg struct {
	cfg *astock.Config
	err error
}

type configSavedMsg struct{ err error }

type backtestDoneMsg struct {
	groups []astock.ResultGroup
	stats  *astock.Stats
	err    error
}

type tradesLoadedMsg struct {
	groups []astock.ResultGroup
	stats  *astock.Stats
	err    error
}

// Model.
type model struct {
	client *astock.Client
	logger *slog.Logger

	inputs      []textinput.Model
	focus       int
	saveOffline bool

	// running is set when a backtest starts and cleared in exactly one
	// place, the backtestDoneMsg handler, so the guard cannot stick.
	running bool
	status  string
	statErr bool

	view          dashboard.View
	haveResults   bool
	viewport      viewport.Model
	ready         bool
	width, height int
}

func initialModel(client *astock.Client, logger *slog.Logger) model {
	labels := []string{
		"股票代码", "回测年数", "K线策略", "买入条件", "止盈%", "止损%", "持有周期",
	}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = labels[i]
		ti.CharLimit = 128
		switch i {
		case fieldKlineBuy, fieldBuyCond:
			ti.Width = 48
		case fieldStockCode:
			ti.Width = 28
		default:
			ti.Width = 8
		}
		inputs[i] = ti
	}
	inputs[fieldStockCode].Focus()

	return model{
		client: client,
		logger: logger,
		inputs: inputs,
		status: "加载配置...",
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadConfigCmd(), m.loadTradesCmd())
}

func (m model) loadConfigCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg, err := client.GetConfig(ctx)
		return configLoadedMsg{cfg: cfg, err: err}
	}
}

func (m model) loadTradesCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		groups, stats, err := client.GetTrades(ctx)
		return tradesLoadedMsg{groups: groups, stats: stats, err: err}
	}
}

// startBacktest saves the form first; the backtest itself is chained from
// the configSavedMsg handler so a failed save never starts a run.
func (m *model) startBacktest() tea.Cmd {
	if m.running {
		return nil
	}
	m.running = true
	m.statErr = false
	m.status = "保存配置..."

	cfg := m.formConfig()
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return configSavedMsg{err: client.SaveConfig(ctx, &cfg)}
	}
}

func (m *model) backtestCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		groups, stats, err := client.RunBacktest(ctx)
		return backtestDoneMsg{groups: groups, stats: stats, err: err}
	}
}

// formConfig reads the form into a configuration, coercing unparseable
// numeric fields to their defaults.
func (m *model) formConfig() astock.Config {
	return astock.Config{
		SaveOfflineData: m.saveOffline,
		TargetStockCode: strings.TrimSpace(m.inputs[fieldStockCode].Value()),
		BacktestYear:    coerceInt(m.inputs[fieldYears].Value(), backtest.DefaultBacktestYear),
		KlineStrategy: astock.KlineStrategy{
			Buy: strings.TrimSpace(m.inputs[fieldKlineBuy].Value()),
		},
		TradeStrategy: astock.TradeStrategy{
			Buys: strings.TrimSpace(m.inputs[fieldBuyCond].Value()),
			Sell: astock.SellRules{
				Gain:   coerceFloat(m.inputs[fieldGain].Value(), backtest.DefaultGainPct),
				Loss:   coerceFloat(m.inputs[fieldLoss].Value(), backtest.DefaultLossPct),
				Period: coerceInt(m.inputs[fieldPeriod].Value(), backtest.DefaultHoldPeriod),
			},
		},
	}
}

func (m *model) fillForm(cfg *astock.Config) {
	m.inputs[fieldStockCode].SetValue(cfg.TargetStockCode)
	m.inputs[fieldYears].SetValue(strconv.Itoa(cfg.BacktestYear))
	m.inputs[fieldKlineBuy].SetValue(cfg.KlineStrategy.Buy)
	m.inputs[fieldBuyCond].SetValue(cfg.TradeStrategy.Buys)
	m.inputs[fieldGain].SetValue(formatFloat(cfg.TradeStrategy.Sell.Gain))
	m.inputs[fieldLoss].SetValue(formatFloat(cfg.TradeStrategy.Sell.Loss))
	m.inputs[fieldPeriod].SetValue(strconv.Itoa(cfg.TradeStrategy.Sell.Period))
	m.saveOffline = cfg.SaveOfflineData
}

func coerceInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func coerceFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m *model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
			m.inputs[j].PromptStyle = focusedStyle
			m.inputs[j].TextStyle = focusedStyle
		} else {
			m.inputs[j].Blur()
			m.inputs[j].PromptStyle = lipgloss.NewStyle()
			m.inputs[j].TextStyle = lipgloss.NewStyle()
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case "ctrl+o":
			m.saveOffline = !m.saveOffline
			return m, nil
		case "enter", "ctrl+r":
			if m.running {
				return m, nil
			}
			return m, m.startBacktest()
		case "ctrl+l":
			return m, m.loadTradesCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		formH := fieldCount + 4 // title + fields + offline toggle + status
		footerH := 1
		vpHeight := m.height - formH - footerH
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
			m.viewport.SetContent(m.renderResults())
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		return m, nil

	case configLoadedMsg:
		if msg.err != nil {
			m.logger.Error("loading config", "error", msg.err)
			m.status = "加载配置失败: " + msg.err.Error()
			m.statErr = true
			return m, nil
		}
		m.fillForm(msg.cfg)
		m.status = "就绪"
		m.statErr = false
		return m, nil

	case configSavedMsg:
		if msg.err != nil {
			// Abort the chained backtest; the guard drops with it.
			m.running = false
			m.logger.Warn("saving config failed", "error", msg.err)
			m.status = "保存失败: " + msg.err.Error()
			m.statErr = true
			return m, nil
		}
		m.status = "回测中..."
		return m, m.backtestCmd()

	case backtestDoneMsg:
		m.running = false
		if msg.err != nil {
			m.logger.Error("backtest failed", "error", msg.err)
			m.status = "回测失败: " + msg.err.Error()
			m.statErr = true
			return m, nil
		}
		m.view = dashboard.BuildView(msg.groups, msg.stats)
		m.haveResults = true
		total := 0
		if msg.stats != nil {
			total = msg.stats.TotalTrades
		}
		m.status = fmt.Sprintf("回测完成, %d 笔交易", total)
		m.statErr = false
		if m.ready {
			m.viewport.SetContent(m.renderResults())
			m.viewport.GotoTop()
		}
		return m, nil

	case tradesLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("loading trade history", "error", msg.err)
			return m, nil
		}
		m.view = dashboard.BuildView(msg.groups, msg.stats)
		m.haveResults = true
		if m.ready {
			m.viewport.SetContent(m.renderResults())
		}
		return m, nil
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" A股回测 "))
	b.WriteString("\n")

	labels := []string{
		"股票代码", "回测年数", "K线策略", "买入条件", "止盈 %  ", "止损 %  ", "持有周期",
	}
	for i, ti := range m.inputs {
		marker := "  "
		if i == m.focus {
			marker = focusedStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s\n", marker, labelStyle.Render(labels[i]), ti.View()))
	}

	check := checkOffStyle.Render("[ ]")
	if m.saveOffline {
		check = checkOnStyle.Render("[x]")
	}
	b.WriteString(fmt.Sprintf("  %s  %s ctrl+o\n", labelStyle.Render("离线数据"), check))

	style := statusStyle
	if m.statErr {
		style = errStyle
	}
	b.WriteString(style.Render("  " + m.status))
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	footer := " enter 回测  tab 切换  ctrl+o 离线  ctrl+l 历史  esc 退出"
	b.WriteString(footerStyle.Render(padOrTrunc(footer, m.width)))
	return b.String()
}

func (m model) renderResults() string {
	if !m.haveResults {
		return labelStyle.Render("  暂无回测结果")
	}

	var b strings.Builder
	s := m.view.Summary
	b.WriteString(summaryStyle.Render(fmt.Sprintf(
		"  交易: %s  胜率: %s  收益: %s (%s)  平均持有: %s",
		s.TotalTrades, s.WinRate,
		classStyle(s.ReturnClass).Render(s.TotalReturn),
		classStyle(s.PctClass).Render(s.ReturnPct),
		s.AvgHoldDays,
	)))
	b.WriteString("\n\n")

	b.WriteString(colHdrStyle.Render(fmt.Sprintf(
		"  %-10s %-8s %-8s %9s  %-10s %9s %10s %9s  %-4s %6s",
		"买入日期", "代码", "名称", "买入价", "卖出日期", "卖出价", "盈亏", "盈亏%", "原因", "持有",
	)))
	b.WriteString("\n")

	for _, row := range m.view.Rows {
		pStyle := classStyle(row.ProfitClass)
		b.WriteString(fmt.Sprintf(
			"  %-10s %-8s %-8s %9s  %-10s %9s %s %s  %s %6s\n",
			row.BuyDate, row.StockCode, row.StockName, row.BuyPrice,
			row.SellDate, row.SellPrice,
			pStyle.Render(fmt.Sprintf("%10s", row.Profit)),
			pStyle.Render(fmt.Sprintf("%9s", row.ProfitPct)),
			reasonStyle(row.ReasonClass).Render(fmt.Sprintf("%-4s", row.Reason)),
			row.HoldDays,
		))
	}
	return b.String()
}

func classStyle(class string) lipgloss.Style {
	if class == dashboard.ClassLoss {
		return lossStyle
	}
	return profitStyle
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}

func main() {
	addr := "http://localhost:5000"
	if a := os.Getenv("ASTOCK_SERVER"); a != "" {
		addr = a
	}

	logPath := fmt.Sprintf("/tmp/astock-tui-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLoggerTo(logFile, "info")

	client := astock.NewClient(addr)

	p := tea.NewProgram(
		initialModel(client, logger),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
