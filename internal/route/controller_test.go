package route

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glabrego/network-cli/internal/refresh"
)

func TestController_PathAlwaysCanonical(t *testing.T) {
	coord := refresh.NewCoordinator()
	c := NewController(coord, "/page=1")

	steps := []func(){
		func() { c.Navigate("/page=3") },
		func() { c.Navigate("#user/5/") },
		func() { c.TurnPage("https://x/api/v1/user/5/posts?page=2") },
		func() { c.Back() },
		func() { c.Forward() },
		func() { c.Navigate("/user/5/page=1") },
		func() { c.Navigate("/following/5/page=4") },
		func() { c.Reset() },
		func() { c.Navigate("/nowhere/") },
		func() { c.Back() },
	}
	for i, step := range steps {
		step()
		st := c.State()
		if st.Path != st.Route.Path() {
			t.Fatalf("step %d: path %q diverged from route %q", i, st.Path, st.Route.Path())
		}
		if got := Parse(st.Path).Path(); got != st.Path {
			t.Fatalf("step %d: path %q is not canonical (%q)", i, st.Path, got)
		}
		for _, entry := range c.History() {
			if Parse(entry).Path() != entry {
				t.Fatalf("step %d: history entry %q is not canonical", i, entry)
			}
		}
	}
}

func TestController_StartPathIsCanonicalised(t *testing.T) {
	c := NewController(nil, "/page=1")
	if c.State().Path != "/" {
		t.Fatalf("expected clean root path, got %s", c.State().Path)
	}

	c = NewController(nil, "/user/03")
	if c.State().Path != "/user/3" {
		t.Fatalf("expected leading zeros dropped, got %s", c.State().Path)
	}
	if got, ok := c.Route().InfoScope(); !ok || got != refresh.UserScope(refresh.ProfileInfo, 3) {
		t.Fatalf("expected the info scope of user 3, got %q", got)
	}
}

func TestController_RootAfterPageResetsToken(t *testing.T) {
	coord := refresh.NewCoordinator()
	c := NewController(coord, "/")
	c.Navigate("/page=4")
	if c.Route().PageToken != "4" {
		t.Fatalf("expected page 4, got %+v", c.Route())
	}

	tr := c.Navigate("/")
	if c.Route().PageToken != "" {
		t.Fatalf("expected page token reset, got %q", c.Route().PageToken)
	}
	if tr.ResourceChanged {
		t.Fatal("page-only change must not be a resource change")
	}
	if diff := cmp.Diff([]refresh.Scope{refresh.GlobalFeed}, tr.Bumped); diff != "" {
		t.Fatalf("unexpected bumps (-want +got):\n%s", diff)
	}
}

func TestController_ResourceChangeBumpsInfoAndList(t *testing.T) {
	coord := refresh.NewCoordinator()
	c := NewController(coord, "/user/1/page=3")

	tr := c.Navigate("/user/2")
	if !tr.ResourceChanged || !tr.Changed {
		t.Fatalf("expected resource change, got %+v", tr)
	}
	if c.Route().PageToken != "" {
		t.Fatalf("new resource must start at page 1, got %q", c.Route().PageToken)
	}
	want := []refresh.Scope{refresh.ProfileInfo("2"), refresh.ProfilePosts("2")}
	if diff := cmp.Diff(want, tr.Bumped); diff != "" {
		t.Fatalf("unexpected bumps (-want +got):\n%s", diff)
	}
	if coord.Generation(refresh.ProfileInfo("2")) != 1 {
		t.Fatal("expected info scope of new resource to be bumped")
	}
	if coord.Generation(refresh.ProfileInfo("1")) != 0 {
		t.Fatal("old resource scope must be untouched")
	}
}

func TestController_TurnPage(t *testing.T) {
	c := NewController(nil, "/following/3")

	tr, ok := c.TurnPage("https://x/api/v1/user/3/following-posts?page=2")
	if !ok || c.State().Path != "/following/3/page=2" {
		t.Fatalf("unexpected state after next: %+v %+v", tr, c.State())
	}

	_, ok = c.TurnPage("https://x/api/v1/user/3/following-posts")
	if !ok || c.State().Path != "/following/3" {
		t.Fatalf("previous link without page must land on page 1, got %s", c.State().Path)
	}

	if _, ok := c.TurnPage(""); ok {
		t.Fatal("empty link must not navigate")
	}

	if diff := cmp.Diff([]string{"/following/3", "/following/3/page=2", "/following/3"}, c.History()); diff != "" {
		t.Fatalf("unexpected history (-want +got):\n%s", diff)
	}
}

func TestController_TurnPageOnUnpaginatedRoute(t *testing.T) {
	c := NewController(nil, "/user/3/follow-users")
	if _, ok := c.TurnPage("https://x/?page=2"); ok {
		t.Fatal("follow-users is not paginated")
	}
}

func TestController_BackForward(t *testing.T) {
	coord := refresh.NewCoordinator()
	c := NewController(coord, "/")
	c.Navigate("/page=2")
	c.Navigate("/user/4")

	if _, ok := c.Forward(); ok {
		t.Fatal("expected no forward entry")
	}
	tr, ok := c.Back()
	if !ok || c.State().Path != "/page=2" {
		t.Fatalf("unexpected back state: %+v", c.State())
	}
	if !tr.ResourceChanged {
		t.Fatal("going back from a profile to the feed changes resource")
	}
	if !c.State().CanForward || !c.State().CanBack {
		t.Fatalf("expected both directions available: %+v", c.State())
	}

	c.Navigate("/following/4")
	if c.State().CanForward {
		t.Fatal("navigating must drop forward entries")
	}
	if diff := cmp.Diff([]string{"/", "/page=2", "/following/4"}, c.History()); diff != "" {
		t.Fatalf("unexpected history (-want +got):\n%s", diff)
	}
}

func TestController_NavigateSamePathIsNoop(t *testing.T) {
	coord := refresh.NewCoordinator()
	c := NewController(coord, "/user/2")
	tr := c.Navigate("/user/2/page=1")
	if tr.Changed || len(tr.Bumped) != 0 {
		t.Fatalf("expected no-op transition, got %+v", tr)
	}
	if len(c.History()) != 1 {
		t.Fatalf("expected no history entry, got %v", c.History())
	}
}

func TestController_ResetForcesRefetchOnFirstPage(t *testing.T) {
	coord := refresh.NewCoordinator()
	c := NewController(coord, "/")
	tr := c.Reset()
	if coord.Generation(refresh.GlobalFeed) != 1 {
		t.Fatalf("expected feed scope bumped once, got %d", coord.Generation(refresh.GlobalFeed))
	}
	if diff := cmp.Diff([]refresh.Scope{refresh.GlobalFeed}, tr.Bumped); diff != "" {
		t.Fatalf("unexpected bumps (-want +got):\n%s", diff)
	}

	c.Navigate("/page=3")
	before := coord.Generation(refresh.GlobalFeed)
	c.Reset()
	if c.State().Path != "/" {
		t.Fatalf("expected reset to root, got %s", c.State().Path)
	}
	if got := coord.Generation(refresh.GlobalFeed); got != before+1 {
		t.Fatalf("expected exactly one bump on reset from page 3, got %d -> %d", before, got)
	}
}

func TestController_Refresh(t *testing.T) {
	coord := refresh.NewCoordinator()
	c := NewController(coord, "/user/9")
	bumped := c.Refresh()
	want := []refresh.Scope{refresh.ProfileInfo("9"), refresh.ProfilePosts("9")}
	if diff := cmp.Diff(want, bumped); diff != "" {
		t.Fatalf("unexpected bumps (-want +got):\n%s", diff)
	}
}
