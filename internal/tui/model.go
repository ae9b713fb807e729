// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mtln/keydrill/internal/corpus"
	"github.com/mtln/keydrill/internal/drill"
	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/results"
	"github.com/mtln/keydrill/internal/session"
	statsPkg "github.com/mtln/keydrill/internal/stats"
	"github.com/mtln/keydrill/internal/store"
)

const liveTickInterval = 200 * time.Millisecond

type view int

const (
	viewPicker view = iota
	viewRun
	viewSummary
)

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

type tickMsg struct {
	gen int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Copy().Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	failedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	cfg     model.Config
	texts   []string
	results *results.Store
	db      *store.Store
	rnd     *rand.Rand

	width  int
	height int

	view        view
	pickerIndex int
	textIndex   int
	variant     model.Variant
	training    bool

	mode    model.Mode
	target  []rune
	tracker *session.Tracker
	dr      *drill.Drill

	started       bool
	startedAt     time.Time
	endedAt       time.Time
	prevCorrectAt time.Time
	charStats     map[rune]*charStat
	tickGen       int

	finished bool
	failed   bool
	last     model.Result
	saveErr  string
}

// NewModel constructs a practice TUI model.
func NewModel(cfg model.Config, texts []string, rs *results.Store, db *store.Store) *Model {
	return &Model{
		cfg:      cfg,
		texts:    texts,
		results:  rs,
		db:       db,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		variant:  cfg.Variant,
		training: cfg.Training,
		view:     viewPicker,
	}
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
		return m, nil
	case tickMsg:
		if msg.gen != m.tickGen || m.view != viewRun || !m.started || m.finished {
			return m, nil
		}
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case viewPicker:
			return m.updatePicker(msg)
		case viewRun:
			return m.updateRun(msg)
		default:
			return m.updateSummary(msg)
		}
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modes := model.Modes()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.pickerIndex--
		if m.pickerIndex < 0 {
			m.pickerIndex = len(modes) - 1
		}
	case "down", "j":
		m.pickerIndex++
		if m.pickerIndex >= len(modes) {
			m.pickerIndex = 0
		}
	case "1", "2", "3", "4":
		m.pickerIndex = int(msg.String()[0] - '1')
	case "left":
		if modes[m.pickerIndex] == model.ModeTyping && len(m.texts) > 0 {
			m.textIndex = (m.textIndex - 1 + len(m.texts)) % len(m.texts)
		}
	case "right":
		if modes[m.pickerIndex] == model.ModeTyping && len(m.texts) > 0 {
			m.textIndex = (m.textIndex + 1) % len(m.texts)
		}
	case "v":
		m.cycleVariant()
	case "t":
		m.training = !m.training
	case "r":
		if modes[m.pickerIndex] == model.ModeTyping && len(m.texts) > 0 {
			m.textIndex = m.rnd.Intn(len(m.texts))
		}
	case "enter":
		return m, m.startRun(modes[m.pickerIndex])
	}
	return m, nil
}

func (m *Model) cycleVariant() {
	variants := model.Variants()
	for i, v := range variants {
		if v == m.variant {
			m.variant = variants[(i+1)%len(variants)]
			return
		}
	}
	m.variant = variants[0]
}

func (m *Model) updateRun(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Abandon the run without saving.
		m.tickGen++
		m.view = viewPicker
		return m, nil
	case tea.KeyCtrlR:
		// Restart the same mode with a fresh target.
		return m, m.startRun(m.mode)
	case tea.KeyBackspace, tea.KeyDelete:
		m.handleBackspace()
		return m, nil
	case tea.KeySpace:
		return m, m.handleRunes([]rune{' '})
	case tea.KeyEnter:
		if m.mode == model.ModeTyping {
			return m, m.handleRunes([]rune{'\n'})
		}
		return m, nil
	case tea.KeyRunes:
		return m, m.handleRunes(msg.Runes)
	default:
		return m, nil
	}
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter", "r":
		return m, m.startRun(m.mode)
	case "esc":
		m.view = viewPicker
		return m, nil
	}
	return m, nil
}

func (m *Model) startRun(mode model.Mode) tea.Cmd {
	m.mode = mode
	m.started = false
	m.finished = false
	m.failed = false
	m.saveErr = ""
	m.startedAt = time.Time{}
	m.prevCorrectAt = time.Time{}
	m.charStats = map[rune]*charStat{}
	m.tickGen++
	m.tracker = nil
	m.dr = nil

	if mode == model.ModeTyping {
		if len(m.texts) == 0 {
			m.view = viewPicker
			return nil
		}
		m.tracker = session.New(m.texts[m.textIndex])
		m.target = m.tracker.Target()
	} else {
		charset, ok := drill.ForMode(mode)
		if !ok {
			m.view = viewPicker
			return nil
		}
		m.dr = drill.New(charset, m.variant, m.cfg.SequenceLength, m.rnd)
	}
	m.view = viewRun
	return nil
}

func (m *Model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(liveTickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) handleBackspace() {
	if m.finished || m.variant == model.VariantSudden {
		return
	}
	if m.tracker != nil {
		m.tracker.Backspace()
		return
	}
	if m.dr != nil {
		m.dr.Backspace()
	}
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	if m.finished {
		return nil
	}
	var cmd tea.Cmd
	if !m.started {
		m.started = true
		m.startedAt = time.Now()
		cmd = m.tick()
	}
	for _, r := range runes {
		if m.tracker != nil {
			m.typeFreeText(r)
		} else if m.dr != nil {
			m.typeDrill(r)
		}
		if m.finished {
			break
		}
	}
	return cmd
}

func (m *Model) typeFreeText(r rune) {
	pos := len(m.tracker.Typed())
	if pos < len(m.target) {
		m.updateStats(m.target[pos], r)
	}
	m.tracker.Type(r)

	if m.variant == model.VariantSudden && m.tracker.ErrorCount() > 0 {
		m.failed = true
		m.finishRun()
		return
	}
	// Standard runs end only on an exact match, so mistakes have to be
	// corrected. Blind runs end once the target length is reached.
	if m.variant == model.VariantStandard {
		if m.tracker.Complete() {
			m.finishRun()
		}
		return
	}
	if m.tracker.Reached() {
		m.finishRun()
	}
}

// speedCount returns the unit count for the speed metric: typed words
// for free typing, correct characters for drills.
func (m *Model) speedCount() int {
	if m.tracker != nil {
		return statsPkg.WordCount(m.tracker.Typed())
	}
	if m.dr != nil {
		return m.dr.Correct()
	}
	return 0
}

func (m *Model) typeDrill(r rune) {
	if expected, ok := m.dr.Current(); ok {
		m.updateStats(expected, r)
	}
	m.dr.Key(r)
	if m.dr.Done() {
		m.failed = m.dr.Failed()
		m.finishRun()
	}
}

func (m *Model) updateStats(expected, typed rune) {
	if expected == ' ' {
		return
	}
	entry, ok := m.charStats[expected]
	if !ok {
		entry = &charStat{}
		m.charStats[expected] = entry
	}
	if typed == expected {
		entry.correct++
		now := time.Now()
		if !m.prevCorrectAt.IsZero() {
			delta := now.Sub(m.prevCorrectAt)
			entry.latencySumMs += delta.Milliseconds()
			entry.latencyCount++
		}
		m.prevCorrectAt = now
		return
	}
	entry.incorrect++
}

func (m *Model) finishRun() {
	if !m.started || m.finished {
		return
	}
	m.finished = true
	m.endedAt = time.Now()
	duration := m.endedAt.Sub(m.startedAt)
	if m.tracker != nil {
		m.tracker.Finish()
	}

	var correct, incorrect, typed int
	if m.tracker != nil {
		correct = m.tracker.CorrectCount()
		incorrect = m.tracker.ErrorCount()
		typed = len(m.tracker.Typed())
	} else {
		correct = m.dr.Correct()
		incorrect = m.dr.Errors()
		typed = len(m.dr.History())
	}

	res := model.Result{
		Timestamp:   m.endedAt,
		Speed:       statsPkg.Speed(m.speedCount(), duration),
		Correct:     correct,
		Typed:       typed,
		DurationSec: duration.Seconds(),
		Completed:   !m.failed,
		Training:    m.training,
	}
	switch m.variant {
	case model.VariantBlind:
		if m.tracker != nil {
			res.EndErrorPct = session.EndErrorPercentage(m.target, m.tracker.Typed(), len(m.target))
		} else {
			res.EndErrorPct = m.dr.EndErrorPercentage()
		}
	case model.VariantStandard:
		if m.tracker != nil {
			res.ErrorPct = m.tracker.ErrorPercentage()
		} else {
			res.ErrorPct = m.dr.ErrorPercentage()
		}
	}
	m.last = res
	m.saveResult(res, correct, incorrect)
	m.view = viewSummary
}

func (m *Model) saveResult(res model.Result, correct, incorrect int) {
	if err := m.results.Append(m.mode, m.variant, res); err != nil {
		m.saveErr = err.Error()
		logErrf("failed to save result: %v\n", err)
	}
	if m.db == nil {
		return
	}
	charStats := make([]model.CharStats, 0, len(m.charStats))
	for ch, entry := range m.charStats {
		charStats = append(charStats, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	stats := model.SessionStats{
		Mode:       m.mode,
		Variant:    m.variant,
		StartedAt:  m.startedAt,
		EndedAt:    m.endedAt,
		Correct:    correct,
		Incorrect:  incorrect,
		DurationMs: m.endedAt.Sub(m.startedAt).Milliseconds(),
		Training:   m.training,
	}
	if _, err := m.db.InsertSession(context.Background(), stats, charStats); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.view {
	case viewPicker:
		return m.viewPicker()
	case viewRun:
		return m.viewRun()
	default:
		return m.viewSummary()
	}
}

func (m *Model) viewPicker() string {
	modes := model.Modes()
	lines := []string{titleStyle.Render("keydrill"), ""}
	for i, mode := range modes {
		label := modeLabel(mode)
		if mode == model.ModeTyping && len(m.texts) > 0 {
			label = fmt.Sprintf("%s  %s", label,
				footerStyle.Render(corpus.Preview(m.texts[m.textIndex], 40)))
		}
		if i == m.pickerIndex {
			lines = append(lines, selectedStyle.Render("> "+label))
		} else {
			lines = append(lines, pendingStyle.Render("  "+label))
		}
	}
	lines = append(lines, "",
		fmt.Sprintf("Variant: %s", variantLabel(m.variant)),
		fmt.Sprintf("Training: %s", onOff(m.training)),
		"",
		footerStyle.Render("enter: start  v: variant  t: training  ←/→: text  r: random text  q: quit"),
	)
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewRun() string {
	target, input, cursorIndex := m.runState()
	if len(target) == 0 {
		return ""
	}
	opts := styleOptions{
		highlightWord: m.mode == model.ModeTyping && m.variant != model.VariantBlind,
		masked:        m.variant == model.VariantBlind,
	}
	styledRunes := buildStyledRunes(target, input, cursorIndex, opts)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := m.contentWidth()
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	contentWidth := int(float64(m.width) * 0.70)
	if m.cfg.WrapWidth > 0 && m.cfg.WrapWidth < contentWidth {
		contentWidth = m.cfg.WrapWidth
	}
	if contentWidth < 1 {
		contentWidth = 1
	}
	return contentWidth
}

func (m *Model) runState() (target, input []rune, cursorIndex int) {
	if m.tracker != nil {
		target = m.target
		input = m.tracker.Typed()
	} else if m.dr != nil {
		target = m.dr.Sequence()
		input = m.dr.History()
	}
	cursorIndex = -1
	if len(input) < len(target) {
		cursorIndex = len(input)
	}
	// Standard drills keep the cursor on the missed target.
	if m.dr != nil {
		cursorIndex = m.dr.Index()
		input = input[:minInt(len(input), m.dr.Index())]
	}
	return target, input, cursorIndex
}

func (m *Model) renderFooter() string {
	target, input, _ := m.runState()
	if len(target) == 0 {
		return ""
	}
	progress := int(float64(len(input)) / float64(len(target)) * 100)
	segments := []string{
		fmt.Sprintf("%s · %s", modeLabel(m.mode), variantLabel(m.variant)),
		fmt.Sprintf("Progress %d%%", progress),
	}
	if m.started {
		elapsed := time.Since(m.startedAt)
		errors := 0
		if m.tracker != nil {
			errors = m.tracker.ErrorCount()
		} else if m.dr != nil {
			errors = m.dr.Errors()
		}
		segments = append(segments,
			fmt.Sprintf("%s %.1f", statsPkg.SpeedLabel(m.mode), statsPkg.Speed(m.speedCount(), elapsed)),
			fmt.Sprintf("%02d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60),
		)
		if m.variant == model.VariantBlind {
			segments = append(segments, "Errors hidden")
		} else {
			segments = append(segments, fmt.Sprintf("Errors %d", errors))
		}
	}
	if m.training {
		segments = append(segments, "training")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) viewSummary() string {
	label := statsPkg.SpeedLabel(m.mode)
	lines := []string{}
	if m.failed {
		lines = append(lines, failedStyle.Render("Sudden death!"))
	} else {
		lines = append(lines, titleStyle.Render("Done"))
	}
	lines = append(lines, "",
		fmt.Sprintf("%s · %s", modeLabel(m.mode), variantLabel(m.variant)),
		fmt.Sprintf("%s: %.1f", label, m.last.Speed),
		fmt.Sprintf("Duration: %.1fs", m.last.DurationSec),
	)
	switch m.variant {
	case model.VariantSudden:
		lines = append(lines, fmt.Sprintf("Correct: %d", m.last.Correct))
	case model.VariantBlind:
		lines = append(lines, fmt.Sprintf("End Errors: %.1f%%", m.last.EndErrorPct))
	default:
		lines = append(lines, fmt.Sprintf("Errors: %.1f%%", m.last.ErrorPct))
	}
	if m.training {
		lines = append(lines, footerStyle.Render("training run"))
	}
	if m.saveErr != "" {
		lines = append(lines, incorrectStyle.Render("Save failed: "+m.saveErr))
	}

	// Blind runs reveal the target with mistakes marked.
	if m.variant == model.VariantBlind {
		target, input := m.revealState()
		styledRunes := buildStyledRunes(target, input, -1, styleOptions{reveal: true})
		wrapped := wrapStyledRunes(styledRunes, m.contentWidth())
		lines = append(lines, "", wrapped)
	}

	lines = append(lines, "", footerStyle.Render("enter: again  esc: menu  q: quit"))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) revealState() (target, input []rune) {
	if m.tracker != nil {
		return m.target, m.tracker.Typed()
	}
	if m.dr != nil {
		return m.dr.Sequence(), m.dr.History()
	}
	return nil, nil
}

func modeLabel(mode model.Mode) string {
	switch mode {
	case model.ModeTyping:
		return "free typing"
	case model.ModeLetter:
		return "letters"
	case model.ModeSpecial:
		return "specials"
	case model.ModeNumber:
		return "numbers"
	default:
		return string(mode)
	}
}

func variantLabel(v model.Variant) string {
	switch v {
	case model.VariantSudden:
		return "sudden death"
	case model.VariantBlind:
		return "blind"
	default:
		return "standard"
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
