package view

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/glabrego/network-cli/internal/network"
	tuitheme "github.com/glabrego/network-cli/internal/tui/theme"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const (
	EmptyText    = "No Contents."
	EditedMarker = "(edit)"
)

// PostLineParams carries what the list shows for one post. Liked, LikeCount,
// Text and Edited come from the optimistic state, not from the raw post.
type PostLineParams struct {
	Post        network.Post
	Text        string
	Edited      bool
	Liked       bool
	LikePending bool
	LikeCount   int
	Self        bool
	Compact     bool
	ShowNumbers bool
	Pos         int
	Active      bool
	Width       int
}

// RenderPostLines renders a post as one line in compact mode and as a
// header line followed by the text otherwise.
func RenderPostLines(p PostLineParams, th tuitheme.Theme) []string {
	cursor := " "
	if p.Active {
		cursor = ">"
	}
	prefix := fmt.Sprintf("  %s ", cursor)
	if p.ShowNumbers {
		prefix = fmt.Sprintf("  %s%2d. ", cursor, p.Pos+1)
	}

	likeLabel := LikeLabel(p.Liked, p.LikeCount)
	right := th.StyleLike(p.Liked, p.LikePending, likeLabel)
	author := strings.TrimSpace(p.Post.CreatedBy.Username)
	if author == "" {
		author = "unknown"
	}
	text := singleLine(p.Text)
	if p.Edited {
		text += " " + EditedMarker
	}

	if p.Compact {
		label := author + ": " + text
		available := p.Width - visibleLen(prefix) - 1 - visibleLen(likeLabel)
		label = truncateRunes(label, max(1, available))
		gap := max(1, p.Width-visibleLen(prefix)-visibleLen(label)-visibleLen(likeLabel))
		return []string{th.RenderActiveLine(p.Active, prefix+label+strings.Repeat(" ", gap)+right)}
	}

	header := th.StyleAuthor(p.Self, author) + "  " + th.MetaLabel.Render(p.Post.CreatedAt)
	gap := max(1, p.Width-visibleLen(prefix)-visibleLen(header)-visibleLen(likeLabel))
	indent := strings.Repeat(" ", visibleLen(prefix))
	body := truncateRunes(text, max(1, p.Width-len(indent)))
	return []string{
		th.RenderActiveLine(p.Active, prefix+header+strings.Repeat(" ", gap)+right),
		th.RenderActiveLine(p.Active, indent+th.PostText.Render(body)),
	}
}

func LikeLabel(liked bool, count int) string {
	if liked {
		return fmt.Sprintf("♥ %d", count)
	}
	return fmt.Sprintf("♡ %d", count)
}

type UserLineParams struct {
	User   network.User
	Self   bool
	Pos    int
	Active bool
	Width  int
}

func RenderUserLine(p UserLineParams, th tuitheme.Theme) string {
	cursor := " "
	if p.Active {
		cursor = ">"
	}
	prefix := fmt.Sprintf("  %s ", cursor)
	counts := fmt.Sprintf("follow %d · follower %d", p.User.FollowCount, p.User.FollowerCount)
	name := truncateRunes(p.User.Username, max(1, p.Width-visibleLen(prefix)-1-visibleLen(counts)))
	gap := max(1, p.Width-visibleLen(prefix)-visibleLen(name)-visibleLen(counts))
	return th.RenderActiveLine(p.Active, prefix+th.StyleAuthor(p.Self, name)+strings.Repeat(" ", gap)+th.MetaValue.Render(counts))
}

// WrapText breaks text on spaces so no line exceeds width runes.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			for utf8.RuneCountInString(w) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				runes := []rune(w)
				lines = append(lines, string(runes[:width]))
				w = string(runes[width:])
			}
			switch {
			case line == "":
				line = w
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) <= width:
				line += " " + w
			default:
				lines = append(lines, line)
				line = w
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

func StripANSI(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}
