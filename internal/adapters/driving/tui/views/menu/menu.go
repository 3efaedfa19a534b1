// Package menu is the navigation screen of the chat TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/messages"
	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/styles"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// Item is one menu entry. Key jumps straight to it.
type Item struct {
	Key         string
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

// View lists the screens of the app and a one-line summary of the index.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	summary  string
	width    int
	height   int
	ready    bool
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		items: []Item{
			{Key: "a", Label: "Ask", Description: "question your documents", View: messages.ViewChat},
			{Key: "i", Label: "Knowledge base", Description: "entries, location, reset", View: messages.ViewIndex},
			{Key: "?", Label: "Help", Description: "key bindings", View: messages.ViewHelp},
			{Key: "q", Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init implements the view lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation and stats updates.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatsLoaded:
		v.summary = summarize(msg.Stats, msg.Err)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
		case "enter":
			return v, v.choose(v.items[v.selected])
		default:
			for i, item := range v.items {
				if msg.String() == item.Key {
					v.selected = i
					return v, v.choose(item)
				}
			}
		}
	}
	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

func summarize(stats *domain.IndexStats, err error) string {
	switch {
	case err != nil:
		return "Knowledge base unavailable: " + err.Error()
	case stats == nil:
		return ""
	case stats.Entries == 0:
		return fmt.Sprintf("%s is empty. Run scholarsync ingest to add documents.", stats.Collection)
	default:
		return fmt.Sprintf("%d chunks in %s (%s)", stats.Entries, stats.Collection, stats.Backend)
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("ScholarSync"))
	b.WriteString("\n")
	if v.summary != "" {
		b.WriteString(v.styles.Muted.Render(v.summary))
	} else {
		b.WriteString(v.styles.Muted.Render("Ask questions about your local documents"))
	}
	b.WriteString("\n\n")

	for i, item := range v.items {
		line := fmt.Sprintf("[%s] %s", item.Key, item.Label)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(line))
		}
		if item.Description != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] select"))
	return b.String()
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}
