package optimistic

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glabrego/network-cli/internal/network"
)

func TestToggle_LikeThenUnlikeConverges(t *testing.T) {
	orders := map[string][]int{
		"in order":     {0, 1},
		"out of order": {1, 0},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			tg := NewToggle(false)
			tickets := []Ticket{tg.Begin(), tg.Begin()}
			if tg.Value() {
				t.Fatal("display must follow the last action")
			}
			for _, i := range order {
				tg.Confirm(tickets[i])
			}
			if tg.Value() || tg.Committed() || tg.Pending() {
				t.Fatalf("expected settled not liked, got value=%v committed=%v pending=%v", tg.Value(), tg.Committed(), tg.Pending())
			}
		})
	}
}

func TestToggle_FailRollsBack(t *testing.T) {
	tg := NewToggle(false)
	k := tg.Begin()
	if !tg.Value() {
		t.Fatal("expected optimistic flip")
	}
	if !tg.Fail(k) {
		t.Fatal("expected latest failure to roll back")
	}
	if tg.Value() {
		t.Fatal("expected display to return to committed value")
	}
}

func TestToggle_FailOfOvertakenActionIsIgnored(t *testing.T) {
	tg := NewToggle(false)
	first := tg.Begin()
	tg.Begin()
	if tg.Fail(first) {
		t.Fatal("overtaken failure must not roll back")
	}
	if tg.Value() {
		t.Fatal("display must still show the latest intent")
	}
}

func TestToggle_ReseedWaitsForPending(t *testing.T) {
	tg := NewToggle(false)
	k := tg.Begin()
	if tg.Reseed(false) {
		t.Fatal("reseed must not override a pending action")
	}
	tg.Confirm(k)
	if !tg.Reseed(false) || tg.Value() {
		t.Fatal("expected reseed to apply after confirmation")
	}
}

func TestLike_CountComesFromServer(t *testing.T) {
	l := NewLike(false, 3)
	k := l.Begin()
	if !l.Liked() || l.Count != 3 {
		t.Fatalf("optimistic flip must not touch count: liked=%v count=%d", l.Liked(), l.Count)
	}
	l.Confirm(k, 7)
	if l.Count != 7 || !l.Liked() {
		t.Fatalf("expected server count 7, got liked=%v count=%d", l.Liked(), l.Count)
	}
}

func TestLike_StaleConfirmKeepsNewerCount(t *testing.T) {
	l := NewLike(false, 0)
	like := l.Begin()
	unlike := l.Begin()
	l.Confirm(unlike, 0)
	if l.Confirm(like, 1) {
		t.Fatal("stale confirmation must be ignored")
	}
	if l.Count != 0 || l.Liked() {
		t.Fatalf("unexpected state: liked=%v count=%d", l.Liked(), l.Count)
	}
}

func TestFollow_ConfirmCarriesUser(t *testing.T) {
	f := NewFollow(network.Profile{User: network.User{ID: 4, Username: "bo", FollowerCount: 1}})
	k := f.Begin()
	f.Confirm(k, network.User{ID: 4, Username: "bo", FollowerCount: 2})
	if !f.Following() || f.User.FollowerCount != 2 {
		t.Fatalf("unexpected follow state: %+v following=%v", f.User, f.Following())
	}
}

func TestEdit_Lifecycle(t *testing.T) {
	e := NewEdit(network.Post{ID: 1, Text: "hello"})
	if _, err := e.Submit(); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}

	e.Start()
	if e.Draft != "hello" {
		t.Fatalf("expected draft snapshot, got %q", e.Draft)
	}
	e.SetDraft("hello world")
	text, err := e.Submit()
	if err != nil || text != "hello world" {
		t.Fatalf("unexpected submit: %q %v", text, err)
	}
	if _, err := e.Submit(); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("expected ErrSubmitting, got %v", err)
	}
	e.SetDraft("ignored")

	updated := "2024-01-02"
	e.Confirm(network.Post{ID: 1, Text: "Hello world", UpdatedAt: &updated})
	if e.Text != "Hello world" || !e.Edited || e.Editing {
		t.Fatalf("expected server text and marker, got %+v", e)
	}
}

func TestEdit_FailKeepsDraft(t *testing.T) {
	e := NewEdit(network.Post{ID: 1, Text: "a"})
	e.Start()
	e.SetDraft("b")
	if _, err := e.Submit(); err != nil {
		t.Fatal(err)
	}
	e.Fail(errors.New("boom"))
	if !e.Editing || e.Submitting || e.Draft != "b" || e.Text != "a" {
		t.Fatalf("unexpected state after failure: %+v", e)
	}
}

func TestEdit_SubmitValidatesLength(t *testing.T) {
	e := NewEdit(network.Post{ID: 1, Text: "a"})
	e.Start()
	e.SetDraft(strings.Repeat("x", network.MaxPostLength+1))
	if _, err := e.Submit(); err == nil {
		t.Fatal("expected length validation error")
	}
	if e.Submitting || !e.Editing || e.Err == nil {
		t.Fatalf("expected edit mode kept with error, got %+v", e)
	}
	e.Cancel()
	if e.Editing || e.Err != nil {
		t.Fatalf("expected cancel to leave edit mode, got %+v", e)
	}
}

func TestStore_SyncCreatesAndDestroys(t *testing.T) {
	s := NewStore()
	s.Sync([]network.Post{{ID: 1, LikeCount: 2}, {ID: 2, IsLiked: true, LikeCount: 5}})

	l, ok := s.Like(2)
	if !ok || !l.Liked() || l.Count != 5 {
		t.Fatalf("unexpected seeded like: %+v", l)
	}
	l.Begin()

	s.Sync([]network.Post{{ID: 2, IsLiked: true, LikeCount: 9}, {ID: 3}})
	if _, ok := s.Like(1); ok {
		t.Fatal("state of post leaving view must be destroyed")
	}
	if _, ok := s.Edit(1); ok {
		t.Fatal("edit state of post leaving view must be destroyed")
	}
	l2, _ := s.Like(2)
	if l2 != l || l2.Liked() || l2.Count != 5 {
		t.Fatalf("pending state must survive refetch: liked=%v count=%d", l2.Liked(), l2.Count)
	}

	var ids []int64
	for _, id := range []int64{1, 2, 3} {
		if _, ok := s.Like(id); ok {
			ids = append(ids, id)
		}
	}
	if diff := cmp.Diff([]int64{2, 3}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
}

func TestStore_SyncReseedsSettledPosts(t *testing.T) {
	s := NewStore()
	s.Sync([]network.Post{{ID: 1, Text: "a", LikeCount: 1}})
	updated := "x"
	s.Sync([]network.Post{{ID: 1, Text: "b", LikeCount: 4, IsLiked: true, UpdatedAt: &updated}})

	l, _ := s.Like(1)
	e, _ := s.Edit(1)
	if !l.Liked() || l.Count != 4 || e.Text != "b" || !e.Edited {
		t.Fatalf("expected fresh server values: like=%+v edit=%+v", l, e)
	}
}

func TestStore_EditingKeepsDraftOnRefetch(t *testing.T) {
	s := NewStore()
	s.Sync([]network.Post{{ID: 1, Text: "a"}})
	e, _ := s.Edit(1)
	e.Start()
	e.SetDraft("draft")

	s.Sync([]network.Post{{ID: 1, Text: "other"}})
	if id, ok := s.Editing(); !ok || id != 1 {
		t.Fatalf("expected post 1 in edit mode, got %d %v", id, ok)
	}
	if e.Draft != "draft" || e.Text != "a" {
		t.Fatalf("refetch must not disturb edit mode: %+v", e)
	}
}

func TestStore_SyncProfile(t *testing.T) {
	s := NewStore()
	s.SyncProfile(&network.Profile{User: network.User{ID: 5}, Following: true})
	f, ok := s.Follow(5)
	if !ok || !f.Following() {
		t.Fatalf("unexpected follow state: %+v", f)
	}
	s.SyncProfile(&network.Profile{User: network.User{ID: 6}})
	if _, ok := s.Follow(5); ok {
		t.Fatal("previous profile state must be destroyed")
	}
	s.SyncProfile(nil)
	if _, ok := s.Follow(6); ok {
		t.Fatal("expected profile state cleared")
	}
}
