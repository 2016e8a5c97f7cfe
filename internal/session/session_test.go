package session

import "testing"

func TestNew_ZeroUserIsAnonymous(t *testing.T) {
	s := New(0, "ghost")
	if s.LoggedIn {
		t.Fatal("expected anonymous session for user id 0")
	}
	if s.CanMutate() {
		t.Fatal("anonymous session must not mutate")
	}
}

func TestOwns(t *testing.T) {
	s := New(7, "alice")
	if !s.Owns(7) {
		t.Fatal("expected session to own its posts")
	}
	if s.Owns(8) {
		t.Fatal("expected session not to own other posts")
	}
	if Anonymous().Owns(0) {
		t.Fatal("anonymous session owns nothing")
	}
}

func TestCanFollow(t *testing.T) {
	s := New(7, "alice")
	if s.CanFollow(7) {
		t.Fatal("cannot follow self")
	}
	if !s.CanFollow(3) {
		t.Fatal("expected to be able to follow another user")
	}
	if Anonymous().CanFollow(3) {
		t.Fatal("anonymous session cannot follow")
	}
}
