package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/glabrego/network-cli/internal/network"
)

type WrapFunc func(string, int) []string

// LikedByLines lays out a post followed by the users who liked it.
func LikedByLines(post network.Post, text string, users []network.User, width int, wrap WrapFunc) []string {
	lines := make([]string, 0, 8+len(users))
	title := wrap(fmt.Sprintf("%s %s", post.CreatedBy.Username, post.CreatedAt), width)
	underline := 1
	for _, l := range title {
		underline = max(underline, utf8.RuneCountInString(l))
	}
	lines = append(lines, title...)
	lines = append(lines, strings.Repeat("=", underline))
	lines = append(lines, wrap(text, width)...)
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Liked by (%d):", len(users)))
	if len(users) == 0 {
		lines = append(lines, "  "+EmptyText)
	}
	for _, u := range users {
		lines = append(lines, "  "+u.Username)
	}
	return lines
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}
