package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title      lipgloss.Style
	RoutePill  lipgloss.Style
	Section    lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style

	Author       lipgloss.Style
	AuthorSelf   lipgloss.Style
	PostText     lipgloss.Style
	EditedMarker lipgloss.Style
	Liked        lipgloss.Style
	NotLiked     lipgloss.Style
	Pending      lipgloss.Style
	Counter      lipgloss.Style
	CounterOver  lipgloss.Style
	Pager        lipgloss.Style
	Empty        lipgloss.Style
	Error        lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		RoutePill:  lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),

		Author:       lipgloss.NewStyle().Bold(true).Foreground(cpLavender),
		AuthorSelf:   lipgloss.NewStyle().Bold(true).Foreground(cpRosewater),
		PostText:     lipgloss.NewStyle().Foreground(cpText),
		EditedMarker: lipgloss.NewStyle().Italic(true).Foreground(cpSubtext0),
		Liked:        lipgloss.NewStyle().Bold(true).Foreground(cpRed),
		NotLiked:     lipgloss.NewStyle().Foreground(cpSubtext0),
		Pending:      lipgloss.NewStyle().Italic(true).Foreground(cpPeach),
		Counter:      lipgloss.NewStyle().Foreground(cpOverlay1),
		CounterOver:  lipgloss.NewStyle().Bold(true).Foreground(cpRed),
		Pager:        lipgloss.NewStyle().Foreground(cpYellow),
		Empty:        lipgloss.NewStyle().Italic(true).Foreground(cpSubtext0),
		Error:        lipgloss.NewStyle().Bold(true).Foreground(cpRed),
	}
}

func (t Theme) StyleAuthor(self bool, name string) string {
	if name == "" {
		return name
	}
	if self {
		return t.AuthorSelf.Render(name)
	}
	return t.Author.Render(name)
}

// StyleLike renders the like marker. A pending toggle is styled apart from a
// confirmed one.
func (t Theme) StyleLike(liked, pending bool, label string) string {
	switch {
	case pending:
		return t.Pending.Render(label)
	case liked:
		return t.Liked.Render(label)
	default:
		return t.NotLiked.Render(label)
	}
}

func (t Theme) StyleCounter(over bool, label string) string {
	if over {
		return t.CounterOver.Render(label)
	}
	return t.Counter.Render(label)
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
