package view

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glabrego/network-cli/internal/network"
	tuitheme "github.com/glabrego/network-cli/internal/tui/theme"
)

func samplePost() network.Post {
	return network.Post{
		ID:        1,
		Text:      "hi",
		CreatedBy: network.User{ID: 2, Username: "bob"},
		CreatedAt: "2026-05-15 11:33",
		LikeCount: 3,
	}
}

func TestRenderPostLines_Full(t *testing.T) {
	th := tuitheme.Default()
	lines := RenderPostLines(PostLineParams{
		Post:      samplePost(),
		Text:      "hi",
		Edited:    true,
		Liked:     true,
		LikeCount: 7,
		Active:    true,
		Width:     60,
	}, th)
	if len(lines) != 2 {
		t.Fatalf("expected header and text lines, got %d", len(lines))
	}
	header := StripANSI(lines[0])
	for _, want := range []string{"> ", "bob", "2026-05-15 11:33"} {
		if !strings.Contains(header, want) {
			t.Fatalf("expected %q in header, got %q", want, header)
		}
	}
	if !strings.HasSuffix(header, "♥ 7") {
		t.Fatalf("expected like marker at right edge, got %q", header)
	}
	if body := StripANSI(lines[1]); !strings.Contains(body, "hi (edit)") {
		t.Fatalf("expected text with edited marker, got %q", body)
	}
}

func TestRenderPostLines_CompactWithNumbers(t *testing.T) {
	th := tuitheme.Default()
	lines := RenderPostLines(PostLineParams{
		Post:        samplePost(),
		Text:        "a long line of text that will not fit in the available width",
		LikeCount:   3,
		Compact:     true,
		ShowNumbers: true,
		Pos:         4,
		Width:       40,
	}, th)
	if len(lines) != 1 {
		t.Fatalf("expected single compact line, got %d", len(lines))
	}
	plain := StripANSI(lines[0])
	if !strings.Contains(plain, " 5. bob: a long") {
		t.Fatalf("unexpected compact line: %q", plain)
	}
	if !strings.Contains(plain, "...") || !strings.HasSuffix(plain, "♡ 3") {
		t.Fatalf("expected truncated text and like marker, got %q", plain)
	}
}

func TestRenderUserLine(t *testing.T) {
	th := tuitheme.Default()
	line := StripANSI(RenderUserLine(UserLineParams{
		User:  network.User{ID: 1, Username: "amy", FollowCount: 2, FollowerCount: 5},
		Width: 50,
	}, th))
	if !strings.Contains(line, "amy") || !strings.HasSuffix(line, "follow 2 · follower 5") {
		t.Fatalf("unexpected user line: %q", line)
	}
}

func TestWrapText(t *testing.T) {
	got := WrapText("one two three four", 9)
	if diff := cmp.Diff([]string{"one two", "three", "four"}, got); diff != "" {
		t.Fatalf("unexpected wrap (-want +got):\n%s", diff)
	}
	got = WrapText("abcdefghij", 4)
	if diff := cmp.Diff([]string{"abcd", "efgh", "ij"}, got); diff != "" {
		t.Fatalf("unexpected long word wrap (-want +got):\n%s", diff)
	}
}
