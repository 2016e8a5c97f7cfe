package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/glabrego/network-cli/internal/feed"
	"github.com/glabrego/network-cli/internal/network"
	"github.com/glabrego/network-cli/internal/optimistic"
)

type fakeService struct {
	page     network.PostPage
	users    []network.User
	profile  network.Profile
	count    int
	user     network.User
	updated  network.Post
	err      error
	deadline time.Time

	lastEndpoint string
	lastToken    string
	lastLiked    bool
	lastFollow   bool
	lastUserID   int64
	lastText     string
}

func (f *fakeService) track(ctx context.Context) {
	if dl, ok := ctx.Deadline(); ok {
		f.deadline = dl
	}
}

func (f *fakeService) FetchPosts(ctx context.Context, endpoint, pageToken string) (network.PostPage, error) {
	f.track(ctx)
	f.lastEndpoint, f.lastToken = endpoint, pageToken
	return f.page, f.err
}

func (f *fakeService) ListUsers(ctx context.Context, endpoint string) ([]network.User, error) {
	f.track(ctx)
	f.lastEndpoint = endpoint
	return f.users, f.err
}

func (f *fakeService) LoadProfile(ctx context.Context, userID int64) (network.Profile, error) {
	f.track(ctx)
	f.lastUserID = userID
	return f.profile, f.err
}

func (f *fakeService) CreatePost(ctx context.Context, text string) error {
	f.track(ctx)
	f.lastText = text
	return f.err
}

func (f *fakeService) UpdatePost(ctx context.Context, _ network.Post, text string) (network.Post, error) {
	f.track(ctx)
	f.lastText = text
	return f.updated, f.err
}

func (f *fakeService) SetLike(ctx context.Context, _ int64, liked bool) (int, error) {
	f.track(ctx)
	f.lastLiked = liked
	return f.count, f.err
}

func (f *fakeService) SetFollow(ctx context.Context, userID int64, follow bool) (network.User, error) {
	f.track(ctx)
	f.lastUserID, f.lastFollow = userID, follow
	return f.user, f.err
}

func (f *fakeService) ListLikeUsers(ctx context.Context, _ int64) ([]network.User, error) {
	f.track(ctx)
	return f.users, f.err
}

func TestFetchPostsCmd_CarriesSequenceAndKey(t *testing.T) {
	svc := &fakeService{page: network.PostPage{Results: []network.Post{{ID: 1}}}}
	req := feed.Request{Seq: 3, Key: feed.Key{Endpoint: "/api/v1/post/", PageToken: "2"}}

	msg := FetchPostsCmd(svc, req)().(PostsMsg)
	if msg.Resp.Seq != 3 || len(msg.Resp.Data.Results) != 1 || msg.Resp.Err != nil {
		t.Fatalf("unexpected response: %+v", msg.Resp)
	}
	if svc.lastEndpoint != "/api/v1/post/" || svc.lastToken != "2" {
		t.Fatalf("unexpected request: %q %q", svc.lastEndpoint, svc.lastToken)
	}
	if svc.deadline.IsZero() {
		t.Fatal("expected a deadline on the fetch context")
	}
}

func TestFetchUsersAndProfileCmd(t *testing.T) {
	svc := &fakeService{
		users:   []network.User{{ID: 4}},
		profile: network.Profile{User: network.User{ID: 4}, Following: true},
	}
	users := FetchUsersCmd(svc, feed.Request{Seq: 1, Key: feed.Key{Endpoint: "/api/v1/user/4/follow-user/"}})().(UsersMsg)
	if len(users.Resp.Data) != 1 || svc.lastEndpoint != "/api/v1/user/4/follow-user/" {
		t.Fatalf("unexpected users response: %+v", users.Resp)
	}

	profile := FetchProfileCmd(svc, feed.Request{Seq: 2}, 4)().(ProfileMsg)
	if !profile.Resp.Data.Following || svc.lastUserID != 4 || profile.Resp.Seq != 2 {
		t.Fatalf("unexpected profile response: %+v", profile.Resp)
	}
}

func TestLikeCmd_SendsTicketTarget(t *testing.T) {
	svc := &fakeService{count: 7}
	ticket := optimistic.Ticket{Seq: 2, Target: true}

	msg := LikeCmd(svc, 5, ticket)().(LikeResultMsg)
	want := LikeResultMsg{PostID: 5, Ticket: ticket, Count: 7}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Fatalf("unexpected message (-want +got):\n%s", diff)
	}
	if !svc.lastLiked {
		t.Fatal("expected like request")
	}
}

func TestFollowCmd_Error(t *testing.T) {
	boom := errors.New("boom")
	svc := &fakeService{err: boom}
	msg := FollowCmd(svc, 9, optimistic.Ticket{Seq: 1, Target: false})().(FollowResultMsg)
	if !errors.Is(msg.Err, boom) || msg.UserID != 9 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if svc.lastFollow {
		t.Fatal("expected unfollow request")
	}
}

func TestUpdateAndCreatePostCmd(t *testing.T) {
	svc := &fakeService{updated: network.Post{ID: 3, Text: "Done"}}
	edit := UpdatePostCmd(svc, network.Post{ID: 3}, "done")().(EditResultMsg)
	if edit.PostID != 3 || edit.Post.Text != "Done" || svc.lastText != "done" {
		t.Fatalf("unexpected edit result: %+v", edit)
	}

	create := CreatePostCmd(svc, "new")().(CreateResultMsg)
	if create.Err != nil || svc.lastText != "new" {
		t.Fatalf("unexpected create result: %+v", create)
	}
}

func TestLikeUsersCmd(t *testing.T) {
	svc := &fakeService{users: []network.User{{Username: "amy"}}}
	msg := LikeUsersCmd(svc, 8)().(LikeUsersMsg)
	if msg.PostID != 8 || len(msg.Users) != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestOpenURLCmd_FallsBackToClipboard(t *testing.T) {
	failOpen := func(string) error { return errors.New("no browser") }
	var copied string
	copyFn := func(u string) error { copied = u; return nil }

	msg := OpenURLCmd("http://h/#user/1", failOpen, copyFn)()
	success, ok := msg.(OpenURLSuccessMsg)
	if !ok || success.Opened || copied != "http://h/#user/1" {
		t.Fatalf("expected clipboard fallback, got %#v (copied %q)", msg, copied)
	}

	msg = OpenURLCmd("http://h/", failOpen, func(string) error { return errors.New("no clipboard") })()
	if _, ok := msg.(OpenURLErrorMsg); !ok {
		t.Fatalf("expected error message, got %#v", msg)
	}
}

func TestCopyURLCmd(t *testing.T) {
	msg := CopyURLCmd("http://h/", nil)()
	if _, ok := msg.(OpenURLErrorMsg); !ok {
		t.Fatalf("expected error without clipboard, got %#v", msg)
	}
}

func TestPersistCmds(t *testing.T) {
	if PersistPreferencesCmd[int](nil, 1) != nil {
		t.Fatal("expected nil command without saver")
	}
	msg := PersistPreferencesCmd(func(int) error { return errors.New("disk") }, 1)()
	if _, ok := msg.(PreferenceSaveErrorMsg); !ok {
		t.Fatalf("expected preference error, got %#v", msg)
	}

	var saved string
	if msg := SaveLastPathCmd(func(p string) error { saved = p; return nil }, "/user/2")(); msg != nil {
		t.Fatalf("expected no message on success, got %#v", msg)
	}
	if saved != "/user/2" {
		t.Fatalf("unexpected saved path: %q", saved)
	}
}
