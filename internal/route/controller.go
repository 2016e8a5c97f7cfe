package route

import (
	"strings"

	"github.com/glabrego/network-cli/internal/refresh"
)

// Transition describes one path change handled by the Controller.
type Transition struct {
	From            Route
	To              Route
	Changed         bool
	ResourceChanged bool
	Bumped          []refresh.Scope
}

type State struct {
	Route      Route
	Path       string
	CanBack    bool
	CanForward bool
}

// Controller keeps the navigation state and a browser-like history of
// canonical paths. The history entry under the cursor is always
// current.Path(); every change goes through the same path-change transition.
type Controller struct {
	refresh *refresh.Coordinator
	current Route
	history []string
	cursor  int
}

func NewController(coord *refresh.Coordinator, startPath string) *Controller {
	if coord == nil {
		coord = refresh.NewCoordinator()
	}
	start := Parse(startPath)
	return &Controller{
		refresh: coord,
		current: start,
		history: []string{start.Path()},
	}
}

func (c *Controller) State() State {
	return State{
		Route:      c.current,
		Path:       c.current.Path(),
		CanBack:    c.cursor > 0,
		CanForward: c.cursor < len(c.history)-1,
	}
}

func (c *Controller) Route() Route {
	return c.current
}

func (c *Controller) History() []string {
	return append([]string(nil), c.history...)
}

// Navigate handles a direct link: the canonical form of path is pushed as a
// new history entry, dropping any forward entries.
func (c *Controller) Navigate(path string) Transition {
	target := Parse(path)
	if target.Path() == c.current.Path() {
		return Transition{From: c.current, To: c.current}
	}
	c.history = append(c.history[:c.cursor+1], target.Path())
	c.cursor++
	return c.apply(target)
}

func (c *Controller) Back() (Transition, bool) {
	if c.cursor == 0 {
		return Transition{From: c.current, To: c.current}, false
	}
	c.cursor--
	return c.apply(Parse(c.history[c.cursor])), true
}

func (c *Controller) Forward() (Transition, bool) {
	if c.cursor >= len(c.history)-1 {
		return Transition{From: c.current, To: c.current}, false
	}
	c.cursor++
	return c.apply(Parse(c.history[c.cursor])), true
}

// TurnPage handles a click on a server-supplied next/previous link. The link
// is decoded into a page token and the resulting path is pushed, so the path
// remains the single source of truth for the page token. A link without a
// page parameter leads to page 1.
func (c *Controller) TurnPage(opaqueURL string) (Transition, bool) {
	if !c.current.Paginated() || strings.TrimSpace(opaqueURL) == "" {
		return Transition{From: c.current, To: c.current}, false
	}
	token, _ := ExtractPageToken(opaqueURL)
	t := c.Navigate(c.current.WithPage(token).Path())
	return t, t.Changed
}

// Reset returns the current resource to page 1 and forces its listing to be
// fetched again even when it is already on page 1.
func (c *Controller) Reset() Transition {
	t := c.Navigate(c.current.Base().Path())
	if scope, ok := c.current.ListScope(); ok && !containsScope(t.Bumped, scope) {
		c.refresh.Bump(scope)
		t.Bumped = append(t.Bumped, scope)
	}
	return t
}

// Refresh bumps every scope shown by the current route without moving.
func (c *Controller) Refresh() []refresh.Scope {
	var bumped []refresh.Scope
	if scope, ok := c.current.InfoScope(); ok {
		c.refresh.Bump(scope)
		bumped = append(bumped, scope)
	}
	if scope, ok := c.current.ListScope(); ok {
		c.refresh.Bump(scope)
		bumped = append(bumped, scope)
	}
	return bumped
}

func (c *Controller) apply(target Route) Transition {
	t := Transition{From: c.current, To: target}
	switch {
	case !c.current.SameResource(target):
		t.Changed = true
		t.ResourceChanged = true
		if scope, ok := target.InfoScope(); ok {
			c.refresh.Bump(scope)
			t.Bumped = append(t.Bumped, scope)
		}
		if scope, ok := target.ListScope(); ok {
			c.refresh.Bump(scope)
			t.Bumped = append(t.Bumped, scope)
		}
	case c.current.PageToken != target.PageToken:
		t.Changed = true
		if scope, ok := target.ListScope(); ok {
			c.refresh.Bump(scope)
			t.Bumped = append(t.Bumped, scope)
		}
	case c.current.Path() != target.Path():
		t.Changed = true
	}
	c.current = target
	c.history[c.cursor] = target.Path()
	return t
}

func containsScope(scopes []refresh.Scope, scope refresh.Scope) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
