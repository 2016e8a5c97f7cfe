package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/network-cli/internal/feed"
	"github.com/glabrego/network-cli/internal/network"
	"github.com/glabrego/network-cli/internal/optimistic"
)

const (
	fetchTimeout    = 10 * time.Second
	mutationTimeout = 10 * time.Second
)

type Service interface {
	FetchPosts(ctx context.Context, endpoint, pageToken string) (network.PostPage, error)
	ListUsers(ctx context.Context, endpoint string) ([]network.User, error)
	LoadProfile(ctx context.Context, userID int64) (network.Profile, error)
	CreatePost(ctx context.Context, text string) error
	UpdatePost(ctx context.Context, post network.Post, text string) (network.Post, error)
	SetLike(ctx context.Context, postID int64, liked bool) (int, error)
	SetFollow(ctx context.Context, userID int64, follow bool) (network.User, error)
	ListLikeUsers(ctx context.Context, postID int64) ([]network.User, error)
}

type PostsMsg struct {
	Resp feed.Response[network.PostPage]
}

type UsersMsg struct {
	Resp feed.Response[[]network.User]
}

type ProfileMsg struct {
	Resp feed.Response[network.Profile]
}

type LikeResultMsg struct {
	PostID int64
	Ticket optimistic.Ticket
	Count  int
	Err    error
}

type FollowResultMsg struct {
	UserID int64
	Ticket optimistic.Ticket
	User   network.User
	Err    error
}

type EditResultMsg struct {
	PostID int64
	Post   network.Post
	Err    error
}

type CreateResultMsg struct {
	Err error
}

type LikeUsersMsg struct {
	PostID int64
	Users  []network.User
	Err    error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

type ClearStatusMsg struct {
	ID int
}

type PreferenceSaveErrorMsg struct {
	Err error
}

type LastPathSaveErrorMsg struct {
	Err error
}

func FetchPostsCmd(service Service, req feed.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		resp := feed.Execute(ctx, req, func(ctx context.Context, key feed.Key) (network.PostPage, error) {
			return service.FetchPosts(ctx, key.Endpoint, key.PageToken)
		})
		return PostsMsg{Resp: resp}
	}
}

func FetchUsersCmd(service Service, req feed.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		resp := feed.Execute(ctx, req, func(ctx context.Context, key feed.Key) ([]network.User, error) {
			return service.ListUsers(ctx, key.Endpoint)
		})
		return UsersMsg{Resp: resp}
	}
}

func FetchProfileCmd(service Service, req feed.Request, userID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		resp := feed.Execute(ctx, req, func(ctx context.Context, _ feed.Key) (network.Profile, error) {
			return service.LoadProfile(ctx, userID)
		})
		return ProfileMsg{Resp: resp}
	}
}

func LikeCmd(service Service, postID int64, ticket optimistic.Ticket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		count, err := service.SetLike(ctx, postID, ticket.Target)
		return LikeResultMsg{PostID: postID, Ticket: ticket, Count: count, Err: err}
	}
}

func FollowCmd(service Service, userID int64, ticket optimistic.Ticket) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		user, err := service.SetFollow(ctx, userID, ticket.Target)
		return FollowResultMsg{UserID: userID, Ticket: ticket, User: user, Err: err}
	}
}

func UpdatePostCmd(service Service, post network.Post, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		updated, err := service.UpdatePost(ctx, post, text)
		return EditResultMsg{PostID: post.ID, Post: updated, Err: err}
	}
}

func CreatePostCmd(service Service, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		return CreateResultMsg{Err: service.CreatePost(ctx, text)}
	}
}

func LikeUsersCmd(service Service, postID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		users, err := service.ListLikeUsers(ctx, postID)
		return LikeUsersMsg{PostID: postID, Users: users, Err: err}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, link copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open link or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Link copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy link to clipboard")}
	}
}

func ClearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}

func PersistPreferencesCmd[P any](saveFn func(P) error, prefs P) tea.Cmd {
	if saveFn == nil {
		return nil
	}
	return func() tea.Msg {
		if err := saveFn(prefs); err != nil {
			return PreferenceSaveErrorMsg{Err: err}
		}
		return nil
	}
}

func SaveLastPathCmd(saveFn func(string) error, path string) tea.Cmd {
	if saveFn == nil {
		return nil
	}
	return func() tea.Msg {
		if err := saveFn(path); err != nil {
			return LastPathSaveErrorMsg{Err: err}
		}
		return nil
	}
}
