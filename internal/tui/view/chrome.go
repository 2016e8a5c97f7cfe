package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/network-cli/internal/network"
	"github.com/glabrego/network-cli/internal/route"
	tuitheme "github.com/glabrego/network-cli/internal/tui/theme"
)

func Header(title, path string, th tuitheme.Theme) string {
	return th.Title.Render("Network") + "  " + th.Section.Render(title) + "  " + th.RoutePill.Render(path)
}

func Toolbar(family route.Family, loggedIn bool) string {
	parts := []string{"j/k move", "[ ] back/fwd", ": go"}
	switch family {
	case route.Feed, route.Following, route.Profile:
		parts = append(parts, "n/p page", "enter author")
		if loggedIn {
			parts = append(parts, "l like", "e edit")
		}
		parts = append(parts, "L liked by")
	case route.FollowUsers, route.FollowerUsers:
		parts = append(parts, "enter profile")
	}
	switch family {
	case route.Profile, route.FollowUsers, route.FollowerUsers:
		parts = append(parts, "w/W follows/followers")
		if loggedIn {
			parts = append(parts, "f follow")
		}
	}
	if loggedIn {
		parts = append(parts, "c compose")
	}
	parts = append(parts, "r refresh", "? help", "q quit")
	return strings.Join(parts, " | ")
}

// Pager renders only the controls the server offered a link for.
func Pager(hasPrevious, hasNext bool, th tuitheme.Theme) string {
	parts := make([]string, 0, 2)
	if hasPrevious {
		parts = append(parts, th.Pager.Render("‹ Previous (p)"))
	}
	if hasNext {
		parts = append(parts, th.Pager.Render("Next (n) ›"))
	}
	return strings.Join(parts, "   ")
}

type ProfileHeaderParams struct {
	User          network.User
	Following     bool
	FollowPending bool
	CanFollow     bool
}

func ProfileHeader(p ProfileHeaderParams, th tuitheme.Theme) string {
	parts := []string{
		th.Author.Render(p.User.Username),
		th.MetaLabel.Render("follow") + " " + th.MetaValue.Render(fmt.Sprintf("%d", p.User.FollowCount)),
		th.MetaLabel.Render("follower") + " " + th.MetaValue.Render(fmt.Sprintf("%d", p.User.FollowerCount)),
	}
	if p.CanFollow {
		label := "[f] Follow"
		if p.Following {
			label = "[f] Unfollow"
		}
		if p.FollowPending {
			label = th.Pending.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " • ")
}

func CompactFooter(path string, shown int, compact, numbers bool, th tuitheme.Theme) string {
	layout := "full"
	if compact {
		layout = "compact"
	}
	nums := "off"
	if numbers {
		nums = "on"
	}
	parts := []string{
		th.MetaLabel.Render("path") + " " + th.MetaValue.Render(path),
		th.MetaValue.Render(fmt.Sprintf("%d shown", shown)),
		th.MetaLabel.Render("layout") + " " + th.MetaValue.Render(layout),
		th.MetaLabel.Render("nums") + " " + th.MetaValue.Render(nums),
	}
	return strings.Join(parts, " • ")
}

func CompactMessage(loading bool, hasWarning bool, status, warning string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}
