// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kedarkumargolla/scholarsync/internal/adapters/driving/tui/styles"
	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// SourceList displays the chunks an answer was grounded on.
type SourceList struct {
	sources  []domain.ScoredRecord
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the source list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// Label renders a source as "filename (type, score)".
func Label(src domain.ScoredRecord) string {
	name := src.Record.Filename()
	if name == "" {
		name = "(unknown)"
	}
	return fmt.Sprintf("%s (%s, %.2f)", name, src.Record.Type(), src.Score)
}

// View renders the source list.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.sources)+4)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))))

	visible := max(l.height-2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.sources))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSource(i))
	}

	if l.expanded {
		if src := l.SelectedSource(); src != nil {
			lines = append(lines, "", l.styles.Normal.Render(wrap(src.Record.Content(), max(l.width-4, 20))))
		}
	}

	return strings.Join(lines, "\n")
}

func (l *SourceList) renderSource(index int) string {
	text := fmt.Sprintf("[%d] %s", index+1, Label(l.sources[index]))
	if maxLen := max(l.width-4, 10); len(text) > maxLen {
		text = text[:maxLen-3] + "..."
	}
	if index == l.selected {
		return l.styles.Selected.Render("> " + text)
	}
	return l.styles.Relevance(l.sources[index].Score).Render("  " + text)
}

// wrap breaks text into lines of at most width characters on word boundaries.
func wrap(text string, width int) string {
	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		if lineLen > 0 && lineLen+1+len(word) > width {
			b.WriteByte('\n')
			lineLen = 0
		} else if lineLen > 0 {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

// SetSources replaces the list and resets the selection.
func (l *SourceList) SetSources(sources []domain.ScoredRecord) {
	l.sources = sources
	l.selected = 0
	l.expanded = false
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.ScoredRecord {
	return l.sources
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedSource returns the currently selected source, or nil if none.
func (l *SourceList) SelectedSource() *domain.ScoredRecord {
	if l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// ToggleExpanded shows or hides the content of the selected source.
func (l *SourceList) ToggleExpanded() {
	l.expanded = !l.expanded
}

// Expanded reports whether the selected source content is shown.
func (l *SourceList) Expanded() bool {
	return l.expanded
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}
