// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/results"
	"github.com/mtln/keydrill/internal/stats"
	"github.com/mtln/keydrill/internal/store"
)

const (
	tabOverview = iota
	tabHistogram
	tabDaily
	tabCharTable
)

const (
	plotHeight    = 10
	histogramBins = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	results *results.Store
	db      *store.Store
	cfg     model.StatsConfig

	report stats.Report
	errMsg string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	charTable  table.Model
	charLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a stats UI model.
func NewModel(rs *results.Store, db *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		results: rs,
		db:      db,
		cfg:     cfg,
		tabs:    []string{"Overview", "Histogram", "Daily", "Char Table"},
	}
	m.initInputs()
	m.initCharTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.activeTab == tabCharTable {
			m.charTable.Focus()
		} else {
			m.charTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabCharTable {
				m.charTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabCharTable {
				m.charTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabCharTable {
				var cmd tea.Cmd
				m.charTable, cmd = m.charTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Mode (typing/letter/special/number): "),
		newFilterInput("Variant (standard/sudden/blind): "),
		newFilterInput("Runs (regular/training/all): "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initCharTable() {
	m.charTable = table.New(
		table.WithColumns(charTableColumns()),
		table.WithHeight(1),
	)
	m.charTable.SetStyles(charTableStyles())
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(string(m.cfg.Mode))
	m.filterInputs[1].SetValue(string(m.cfg.Variant))
	m.filterInputs[2].SetValue(string(m.cfg.Filter))
	if m.cfg.Since != nil {
		m.filterInputs[3].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[3].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[4].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[4].SetValue("")
	}
	m.filterInputs[5].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setCharTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabCharTable {
		m.charTable.Focus()
	} else {
		m.charTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: mode=%s  variant=%s  runs=%s  since=%s  last=%s  window=%d",
		m.cfg.Mode, m.cfg.Variant, m.cfg.Filter, since, last, m.cfg.CurveWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabCharTable {
		switch {
		case m.db == nil:
			return fitLines("Character stats need the session database.", m.width, height)
		case len(m.report.CharAggsAll) == 0:
			return fitLines("No character stats found.", m.width, height)
		default:
			view := tableMutedStyle.Render(m.charTable.View())
			return fitLines(view, m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.results, m.db, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyCharTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabHistogram].SetContent(m.renderHistogram())
	m.viewports[tabDaily].SetContent(m.renderDaily(width))
}

func (m *Model) renderOverview(width int) string {
	if len(m.report.Results) == 0 {
		return "No results found."
	}
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, m.cfg.Mode, m.cfg.Variant, m.report.Results); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	if err := stats.RenderSpeedCurve(&buf, m.cfg.Mode, m.cfg.Variant, m.report.Results,
		m.cfg.CurveWindow, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curve: %v", err)
	}
	if weak := stats.WeakestChars(m.report.CharAggsWindow, 8); len(weak) > 0 {
		fmt.Fprintf(&buf, "Weakest chars (recent runs): %s\n", strings.Join(weak, " "))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderHistogram() string {
	if len(m.report.Results) == 0 {
		return "No results found."
	}
	var buf bytes.Buffer
	if err := stats.RenderHistogram(&buf, m.cfg.Mode, m.report.Results, histogramBins); err != nil {
		return fmt.Sprintf("Failed to render histogram: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderDaily(width int) string {
	if len(m.report.Results) == 0 {
		return "No results found."
	}
	var buf bytes.Buffer
	if err := stats.RenderDaily(&buf, m.cfg.Mode, m.report.Results, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render daily plot: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func charTableColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 4},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Latency (ms)", Width: 17},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Total", Width: 6},
	}
}

func buildCharTableRows(aggs []model.CharAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	sorted := sortCharAggsByTotal(aggs)
	for _, agg := range sorted {
		total := agg.Correct + agg.Incorrect
		acc := 0.0
		if total > 0 {
			acc = float64(agg.Correct) / float64(total) * 100
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		charLabel := agg.Char
		if charLabel == " " {
			charLabel = "<space>"
		}
		rows = append(rows, table.Row{
			charLabel,
			fmt.Sprintf("%.2f%%", acc),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%d", total),
		})
	}
	return rows
}

func (m *Model) applyCharTable(width, height int) {
	rows := buildCharTableRows(m.report.CharAggsAll)
	viewportHeight := maxInt(1, height-1)
	if m.charLayout.width == width &&
		m.charLayout.height == viewportHeight &&
		m.charLayout.rowCount == len(rows) {
		return
	}
	m.charTable.SetColumns(charTableColumns())
	m.charTable.SetRows(rows)
	m.charLayout.rowCount = len(rows)
	m.setCharTableSize(width, height)
}

func (m *Model) setCharTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.charLayout.width == width && m.charLayout.height == viewportHeight {
		return
	}
	m.charLayout.width = width
	m.charLayout.height = viewportHeight
	m.charTable.SetWidth(width)
	m.charTable.SetHeight(viewportHeight)
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	mode := model.Mode(strings.TrimSpace(m.filterInputs[0].Value()))
	switch mode {
	case model.ModeTyping, model.ModeLetter, model.ModeSpecial, model.ModeNumber:
	default:
		return fmt.Errorf("invalid mode (use typing, letter, special, or number)")
	}

	variant := model.Variant(strings.TrimSpace(m.filterInputs[1].Value()))
	switch variant {
	case model.VariantStandard, model.VariantSudden, model.VariantBlind:
	default:
		return fmt.Errorf("invalid variant (use standard, sudden, or blind)")
	}

	filter := model.RunFilter(strings.TrimSpace(m.filterInputs[2].Value()))
	switch filter {
	case "":
		filter = model.FilterRegular
	case model.FilterRegular, model.FilterTraining, model.FilterAll:
	default:
		return fmt.Errorf("invalid runs value (use regular, training, or all)")
	}

	sinceInput := strings.TrimSpace(m.filterInputs[3].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[4].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[5].Value())
	window := 0
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil {
			return fmt.Errorf("invalid curve window (use integer)")
		}
		if parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg = model.StatsConfig{
		Mode:        mode,
		Variant:     variant,
		Filter:      filter,
		Since:       since,
		Last:        last,
		CurveWindow: window,
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func sortCharAggsByTotal(aggs []model.CharAggregate) []model.CharAggregate {
	out := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(out, func(i, j int) bool {
		totalI := out[i].Correct + out[i].Incorrect
		totalJ := out[j].Correct + out[j].Incorrect
		if totalI == totalJ {
			return out[i].Char < out[j].Char
		}
		return totalI > totalJ
	})
	return out
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
