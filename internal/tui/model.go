// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/adaptype/internal/engine"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
)

const saveTimeout = 5 * time.Second

// ResultSink receives finished results. Failures never change what the
// results screen shows.
type ResultSink interface {
	SaveResult(ctx context.Context, rec model.ResultRecord) error
}

// WordSource returns the words for the next test.
type WordSource func() ([]string, error)

// Options configures a Model.
type Options struct {
	// Name skips the name prompt when set.
	Name   string
	Words  WordSource
	Sink   ResultSink
	Logger zerolog.Logger
	// Engine options are applied before the model installs its scheduler.
	Engine []engine.Option
}

type screen int

const (
	screenName screen = iota
	screenTesting
	screenResults
)

type settleMsg struct {
	seq int
}

type savedMsg struct {
	err error
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea typing UI.
type Model struct {
	words WordSource
	sink  ResultSink
	log   zerolog.Logger

	engine *engine.Engine
	sched  *engine.ManualScheduler

	screen    screen
	name      string
	nameInput textinput.Model
	errMsg    string

	settleSeq  int
	result     engine.Result
	saveStatus string
	saveFailed bool

	width  int
	height int
}

// NewModel constructs a typing TUI model. Without a name it opens on the name
// prompt, otherwise it starts the first test immediately.
func NewModel(opts Options) *Model {
	sched := &engine.ManualScheduler{}
	engineOpts := append(append([]engine.Option(nil), opts.Engine...), engine.WithScheduler(sched))
	m := &Model{
		words:  opts.Words,
		sink:   opts.Sink,
		log:    opts.Logger,
		engine: engine.New(engineOpts...),
		sched:  sched,
	}
	m.nameInput = newNameInput()
	m.name = strings.TrimSpace(opts.Name)
	if m.name == "" {
		m.screen = screenName
		m.nameInput.Focus()
		return m
	}
	m.startTest()
	if m.screen == screenName {
		m.nameInput.SetValue(m.name)
		m.nameInput.Focus()
	}
	return m
}

func newNameInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "your name"
	input.CharLimit = 32
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenName {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case settleMsg:
		return m, m.settle(msg)
	case savedMsg:
		m.handleSaved(msg.err)
		return m, nil
	case tea.KeyMsg:
		switch m.screen {
		case screenName:
			return m.updateName(msg)
		case screenTesting:
			return m.updateTesting(msg)
		case screenResults:
			return m.updateResults(msg)
		}
	}
	if m.screen == screenName {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.errMsg = "Please enter your name."
			return m, nil
		}
		m.name = name
		m.nameInput.Blur()
		m.startTest()
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) updateTesting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyCtrlF:
		return m, m.finishEarly()
	case tea.KeySpace:
		return m, m.pressKeys([]rune{' '})
	case tea.KeyRunes:
		return m, m.pressKeys(msg.Runes)
	}
	return m, nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
		return m, tea.Quit
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.startTest()
	}
	return m, nil
}

func (m *Model) startTest() {
	m.errMsg = ""
	if m.words == nil {
		m.errMsg = "No word source configured."
		return
	}
	words, err := m.words()
	if err != nil {
		m.log.Error().Err(err).Msg("failed to load words")
		m.errMsg = fmt.Sprintf("Could not load words: %v", err)
		return
	}
	if err := m.engine.Start(words); err != nil {
		m.log.Error().Err(err).Msg("failed to start test")
		m.errMsg = fmt.Sprintf("Could not start test: %v", err)
		return
	}
	m.settleSeq++
	m.result = engine.Result{}
	m.saveStatus = ""
	m.saveFailed = false
	m.screen = screenTesting
	m.log.Info().Str("name", m.name).Int("words", len(words)).Msg("test started")
}

func (m *Model) pressKeys(runes []rune) tea.Cmd {
	for _, r := range runes {
		press, err := m.engine.PressKey(r)
		if err != nil {
			m.log.Debug().Err(err).Msg("key press rejected")
			return nil
		}
		if press.WordComplete {
			m.settleSeq++
			seq := m.settleSeq
			return tea.Tick(m.engine.SettleDelay(), func(time.Time) tea.Msg {
				return settleMsg{seq: seq}
			})
		}
	}
	return nil
}

// settle drains the scheduled word advance once the settle delay elapsed.
// Ticks from an earlier word or test are dropped.
func (m *Model) settle(msg settleMsg) tea.Cmd {
	if m.screen != screenTesting || msg.seq != m.settleSeq {
		return nil
	}
	m.sched.RunPending()
	if res, ok := m.engine.Result(); ok {
		return m.finish(res)
	}
	return nil
}

func (m *Model) finishEarly() tea.Cmd {
	res, err := m.engine.Finish()
	if err != nil {
		m.log.Debug().Err(err).Msg("finish rejected")
		return nil
	}
	return m.finish(res)
}

func (m *Model) finish(res engine.Result) tea.Cmd {
	m.settleSeq++
	m.result = res
	m.screen = screenResults
	m.log.Info().
		Str("name", m.name).
		Int("accuracy", res.Accuracy).
		Int("wpm", res.WordsPerMinute).
		Int("errors", res.TotalErrors).
		Msg("test finished")
	return m.saveCmd(recordFor(m.name, res))
}

func (m *Model) saveCmd(rec model.ResultRecord) tea.Cmd {
	if m.sink == nil {
		m.saveStatus = "Result not saved."
		return nil
	}
	m.saveStatus = "Saving result..."
	sink := m.sink
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return savedMsg{err: sink.SaveResult(ctx, rec)}
	}
}

func (m *Model) handleSaved(err error) {
	if err != nil {
		m.log.Error().Err(err).Str("name", m.name).Msg("failed to save result")
		m.saveStatus = fmt.Sprintf("Could not save result: %v", err)
		m.saveFailed = true
		return
	}
	m.saveStatus = "Result saved."
	m.saveFailed = false
}

func recordFor(name string, res engine.Result) model.ResultRecord {
	return model.ResultRecord{
		Name:       name,
		Accuracy:   res.Accuracy,
		WPM:        res.WordsPerMinute,
		Errors:     res.TotalErrors,
		KeyErrors:  stats.RuneKeyErrors(res.KeyErrors),
		Words:      res.WordsCompleted,
		StartedAt:  res.StartedAt,
		EndedAt:    res.EndedAt,
		DurationMs: res.Duration.Milliseconds(),
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenName:
		content = m.renderName()
	case screenTesting:
		content = m.renderTesting()
	case screenResults:
		content = m.renderResults()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderName() string {
	lines := []string{
		titleStyle.Render("adaptype"),
		"",
		"What should we call you?",
		m.nameInput.View(),
	}
	if m.errMsg != "" {
		lines = append(lines, incorrectStyle.Render(m.errMsg))
	}
	lines = append(lines, "", footerStyle.Render("enter start · esc quit"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderTesting() string {
	count := m.engine.WordCount()
	index := min(m.engine.WordIndex(), count-1)
	target := []rune(m.engine.Word())
	input := []rune(m.engine.Input())

	cursorIndex := -1
	var next rune
	if len(input) < len(target) {
		cursorIndex = len(input)
		next = target[cursorIndex]
	}

	progress := fmt.Sprintf("Word %d of %d", index+1, count)
	if dots := progressDots(index, count); dots != "" {
		progress += "  " + pendingStyle.Render(dots)
	}

	targetRunes := buildStyledRunes(target, input, cursorIndex)
	inputRunes := buildInputRunes(target, input)
	inputLine := renderStyledRunes(inputRunes)
	if len(inputRunes) == 0 {
		inputLine = pendingStyle.Render("_")
	}
	if pad := styledWidth(targetRunes) - max(styledWidth(inputRunes), 1); pad > 0 {
		inputLine += strings.Repeat(" ", pad)
	}

	live := m.engine.CurrentStats()
	statsLine := fmt.Sprintf("Accuracy %d%%  WPM %d  Errors %d", live.Accuracy, live.WordsPerMinute, live.Errors)

	lines := []string{
		titleStyle.Render("adaptype") + footerStyle.Render(" · "+m.name),
		progress,
		"",
		renderStyledRunes(targetRunes),
		inputLine,
		"",
		renderKeyboard(m.engine.Scale, next),
		"",
		statsLine,
	}
	if m.errMsg != "" {
		lines = append(lines, incorrectStyle.Render(m.errMsg))
	}
	lines = append(lines, footerStyle.Render("enter finish · esc quit"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}
