// Package index provides the knowledge base view for the TUI.
package index

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/messages"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/styles"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

// ErrNoIndexService indicates that no index service was provided.
var ErrNoIndexService = errors.New("index service not available")

// MenuOption represents an action in the knowledge base menu.
type MenuOption int

const (
	OptionRefresh MenuOption = iota
	OptionClear
	OptionBack
)

// View shows the collection and lets the user refresh or clear it.
type View struct {
	styles       *styles.Styles
	indexService driving.IndexService
	ctx          context.Context

	stats      *domain.IndexStats
	selected   MenuOption
	confirming bool
	notice     string
	width      int
	height     int
	ready      bool
	err        error
}

// NewView creates a new knowledge base view.
func NewView(s *styles.Styles, indexService driving.IndexService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		indexService: indexService,
		ctx:          context.Background(),
		selected:     OptionRefresh,
		width:        80,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the stats.
func (v *View) Init() tea.Cmd {
	v.confirming = false
	v.notice = ""
	return v.LoadStats()
}

// LoadStats returns a command that reads the index stats.
func (v *View) LoadStats() tea.Cmd {
	return func() tea.Msg {
		if v.indexService == nil {
			return messages.StatsLoaded{Err: ErrNoIndexService}
		}
		stats, err := v.indexService.Stats(v.ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update handles messages for the knowledge base view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StatsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.stats = msg.Stats
		}
		return v, nil

	case messages.IndexCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = domain.ClearMessage(msg.Existed)
		return v, v.LoadStats()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirming {
		switch msg.String() {
		case "y", "Y":
			v.confirming = false
			return v, v.clear()
		default:
			v.confirming = false
			v.notice = "Cancelled."
			return v, nil
		}
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > OptionRefresh {
			v.selected--
		}
	case "down", "j":
		if v.selected < OptionBack {
			v.selected++
		}
	case "enter":
		return v.handleSelect()
	case "esc":
		return v, backToMenu
	}

	return v, nil
}

func backToMenu() tea.Msg {
	return messages.ViewChanged{View: messages.ViewMenu}
}

func (v *View) handleSelect() (*View, tea.Cmd) {
	switch v.selected {
	case OptionRefresh:
		v.notice = ""
		return v, v.LoadStats()
	case OptionClear:
		v.confirming = true
		return v, nil
	case OptionBack:
		return v, backToMenu
	}
	return v, nil
}

// clear returns a command that drops the collection.
func (v *View) clear() tea.Cmd {
	return func() tea.Msg {
		if v.indexService == nil {
			return messages.IndexCleared{Err: ErrNoIndexService}
		}
		existed, err := v.indexService.Clear(v.ctx)
		return messages.IndexCleared{Existed: existed, Err: err}
	}
}

// View renders the knowledge base view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Knowledge base"))
	b.WriteString("\n\n")

	if v.stats != nil {
		for _, row := range [][2]string{
			{"Collection", v.stats.Collection},
			{"Location", v.stats.Dir},
			{"Backend", v.stats.Backend},
			{"Entries", fmt.Sprintf("%d", v.stats.Entries)},
		} {
			b.WriteString(v.styles.Subtitle.Render(row[0] + ": "))
			b.WriteString(v.styles.Normal.Render(row[1]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}
	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(strings.Repeat("─", max(min(40, v.width-4), 0)))
	b.WriteString("\n\n")

	if v.confirming {
		b.WriteString(v.styles.Warning.Render("Delete every entry in this collection? [y/N]"))
		b.WriteString("\n")
		return b.String()
	}

	options := []struct {
		option MenuOption
		label  string
	}{
		{OptionRefresh, "Refresh"},
		{OptionClear, "Clear knowledge base"},
		{OptionBack, "Back"},
	}
	for _, opt := range options {
		if v.selected == opt.option {
			b.WriteString(v.styles.Selected.Render("> " + opt.label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + opt.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Stats returns the last loaded stats.
func (v *View) Stats() *domain.IndexStats {
	return v.stats
}

// SelectedOption returns the currently selected menu option.
func (v *View) SelectedOption() MenuOption {
	return v.selected
}

// Confirming reports whether a clear is awaiting confirmation.
func (v *View) Confirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
