package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/network-cli/internal/feed"
	"github.com/glabrego/network-cli/internal/network"
	"github.com/glabrego/network-cli/internal/optimistic"
	"github.com/glabrego/network-cli/internal/session"
	tuiactions "github.com/glabrego/network-cli/internal/tui/actions"
)

func TestModelUpdate_HandlesAllActionMessageTypes(t *testing.T) {
	svc := newFakeService()
	svc.pages["/api/v1/user/2/posts "] = network.PostPage{Results: []network.Post{amyPost(1, "Base")}}
	svc.profiles[2] = network.User{ID: 2, Username: "bob"}
	m := start(t, svc, Options{Session: session.New(1, "amy"), StartPath: "/user/2"})

	tests := []struct {
		name string
		msg  tea.Msg
	}{
		{
			name: "posts success",
			msg:  tuiactions.PostsMsg{Resp: feed.Response[network.PostPage]{Seq: 1, Data: network.PostPage{Results: []network.Post{amyPost(1, "Base")}}}},
		},
		{
			name: "posts unknown sequence",
			msg:  tuiactions.PostsMsg{Resp: feed.Response[network.PostPage]{Seq: 99, Err: assertErr("late")}},
		},
		{
			name: "users unknown sequence",
			msg:  tuiactions.UsersMsg{Resp: feed.Response[[]network.User]{Seq: 99}},
		},
		{
			name: "profile unknown sequence",
			msg:  tuiactions.ProfileMsg{Resp: feed.Response[network.Profile]{Seq: 99}},
		},
		{
			name: "like result for unknown post",
			msg:  tuiactions.LikeResultMsg{PostID: 404, Ticket: optimistic.Ticket{Seq: 1, Target: true}, Count: 1},
		},
		{
			name: "like error",
			msg:  tuiactions.LikeResultMsg{PostID: 1, Ticket: optimistic.Ticket{Seq: 7}, Err: assertErr("like failed")},
		},
		{
			name: "follow error",
			msg:  tuiactions.FollowResultMsg{UserID: 2, Ticket: optimistic.Ticket{Seq: 3}, Err: assertErr("follow failed")},
		},
		{
			name: "edit result for post not in edit",
			msg:  tuiactions.EditResultMsg{PostID: 1, Post: amyPost(1, "Base")},
		},
		{
			name: "edit result for unknown post",
			msg:  tuiactions.EditResultMsg{PostID: 404, Err: assertErr("edit failed")},
		},
		{
			name: "create error",
			msg:  tuiactions.CreateResultMsg{Err: assertErr("create failed")},
		},
		{
			name: "like users outside liked-by view",
			msg:  tuiactions.LikeUsersMsg{PostID: 1, Users: []network.User{{ID: 3}}},
		},
		{
			name: "open url success",
			msg:  tuiactions.OpenURLSuccessMsg{Status: "Opened in browser", Opened: true},
		},
		{
			name: "open url error",
			msg:  tuiactions.OpenURLErrorMsg{Err: assertErr("open failed")},
		},
		{
			name: "clear status",
			msg:  tuiactions.ClearStatusMsg{ID: 1},
		},
		{
			name: "preference save error",
			msg:  tuiactions.PreferenceSaveErrorMsg{Err: assertErr("disk")},
		},
		{
			name: "last path save error",
			msg:  tuiactions.LastPathSaveErrorMsg{Err: assertErr("disk")},
		},
		{
			name: "window size",
			msg:  tea.WindowSizeMsg{Width: 80, Height: 24},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			updated, _ := m.Update(tc.msg)
			next, ok := updated.(Model)
			if !ok {
				t.Fatalf("expected Model after update, got %T", updated)
			}
			if next.View() == "" {
				t.Fatal("expected a rendered view")
			}
			m = next
		})
	}
}

func TestModelUpdate_StaleResponsesLeaveStateUntouched(t *testing.T) {
	svc := newFakeService()
	svc.pages["/api/v1/post/ "] = network.PostPage{Results: []network.Post{amyPost(1, "kept")}}
	m := start(t, svc, Options{})

	updated, _ := m.Update(tuiactions.PostsMsg{Resp: feed.Response[network.PostPage]{Seq: 1, Err: assertErr("late failure")}})
	m = updated.(Model)
	if view := screen(m); !strings.Contains(view, "kept") {
		t.Fatalf("a resolved sequence must not be applied twice, got: %s", view)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func assertErr(s string) error { return errString(s) }
