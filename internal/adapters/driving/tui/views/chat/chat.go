// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/components/input"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/components/list"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/components/status"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/keymap"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/messages"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/styles"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

// ErrNoAnswerService indicates that no answer service was provided.
var ErrNoAnswerService = errors.New("answer service is required")

// Exchange is one question with its answer or error.
type Exchange struct {
	Question string
	Answer   string
	Err      error
}

// View is the chat view: transcript, question input, sources and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	sources    *list.SourceList
	statusbar  *status.Bar
	transcript viewport.Model
	spinner    spinner.Model

	answerService driving.AnswerService
	ctx           context.Context

	exchanges  []Exchange
	thinking   bool
	focusInput bool
	width      int
	height     int
	ready      bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		sources:       list.NewSourceList(s),
		statusbar:     status.NewBar(s, km),
		transcript:    viewport.New(80, 12),
		spinner:       sp,
		answerService: answerService,
		ctx:           context.Background(),
		focusInput:    true,
		width:         80,
		height:        24,
	}
}

// WithContext sets the context used for answer calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.StatsLoaded:
		if msg.Err == nil && msg.Stats != nil {
			v.statusbar.SetCollection(msg.Stats.Collection, msg.Stats.Entries)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.thinking = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		return v.handleInputKey(msg)
	}
	return v.handleSourcesKey(msg)
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.thinking {
			return v, nil
		}
		v.input.Reset()
		v.thinking = true
		v.statusbar.SetState(status.StateThinking)
		return v, tea.Batch(v.spinner.Tick, v.ask(question))

	case tea.KeyTab:
		if v.sources.Count() > 0 {
			v.focusInput = false
			v.input.Blur()
			v.statusbar.SetState(status.StateSources)
		}
		return v, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleSourcesKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter:
		v.sources.ToggleExpanded()
		return v, nil
	case msg.Type == tea.KeyTab || keymap.Matches(msg.String(), v.keymap.NewQuestion):
		v.focusInput = true
		v.statusbar.SetState(status.StateAnswered)
		return v, v.input.Focus()
	}

	v.sources, _ = v.sources.Update(msg)
	return v, nil
}

// ask returns a command that answers question.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoAnswerService}
		}
		answer, err := v.answerService.Answer(v.ctx, question)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.thinking = false

	ex := Exchange{Question: msg.Question, Err: msg.Err}
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.sources.SetSources(nil)
	} else {
		ex.Answer = msg.Answer.Text
		v.sources.SetSources(msg.Answer.Sources)
		v.statusbar.SetState(status.StateAnswered)
		v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	}

	v.exchanges = append(v.exchanges, ex)
	v.refreshTranscript()
}

func (v *View) refreshTranscript() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.exchanges) == 0 {
		return v.styles.Muted.Render("Ask anything about the documents you have ingested.")
	}

	width := max(v.width-4, 20)
	var b strings.Builder
	for i, ex := range v.exchanges {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Width(width).Render("You: " + ex.Question))
		b.WriteString("\n")
		if ex.Err != nil {
			b.WriteString(v.styles.Error.Width(width).Render("Error: " + ex.Err.Error()))
		} else {
			b.WriteString(v.styles.Answer.Width(width).Render(ex.Answer))
		}
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("ScholarSync"), "")
	sections = append(sections, v.transcript.View(), "")

	if v.thinking {
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Retrieving and generating..."), "")
	}

	sections = append(sections, v.input.View(), "")
	if v.sources.Count() > 0 {
		sections = append(sections, v.sources.View(), "")
	}
	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.sources.SetDimensions(width, max(height/4, 3))
	v.transcript.Width = width
	v.transcript.Height = max(height-height/4-10, 3)
	v.refreshTranscript()
}

// Exchanges returns the transcript so far.
func (v *View) Exchanges() []Exchange {
	return v.exchanges
}

// Thinking reports whether an answer is pending.
func (v *View) Thinking() bool {
	return v.thinking
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Sources returns the source list component.
func (v *View) Sources() *list.SourceList {
	return v.sources
}

// Status returns the status bar component.
func (v *View) Status() *status.Bar {
	return v.statusbar
}

// Reset clears the input and returns focus to it. The transcript is kept.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.statusbar.Clear()
}
