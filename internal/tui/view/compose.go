package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/glabrego/network-cli/internal/network"
	tuitheme "github.com/glabrego/network-cli/internal/tui/theme"
)

// CharCounter renders "n / 128" for a draft.
func CharCounter(draft string, th tuitheme.Theme) string {
	n := utf8.RuneCountInString(draft)
	return th.StyleCounter(n > network.MaxPostLength, fmt.Sprintf("%d / %d", n, network.MaxPostLength))
}

type ComposerParams struct {
	Label      string
	Draft      string
	Submitting bool
	Err        string
	Width      int
}

func Composer(p ComposerParams, th tuitheme.Theme) string {
	var b strings.Builder
	b.WriteString(th.Section.Render(p.Label))
	b.WriteString("  ")
	b.WriteString(th.MetaLabel.Render("enter submit | esc cancel"))
	b.WriteString("\n")
	for _, line := range WrapText(p.Draft+"_", max(10, p.Width-4)) {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(CharCounter(p.Draft, th))
	if p.Submitting {
		b.WriteString("  ")
		b.WriteString(th.StateLoad.Render("saving..."))
	}
	b.WriteString("\n")
	if p.Err != "" {
		b.WriteString("  ")
		b.WriteString(th.Error.Render(p.Err))
		b.WriteString("\n")
	}
	return b.String()
}
