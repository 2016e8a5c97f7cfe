package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/glabrego/network-cli/internal/feed"
	"github.com/glabrego/network-cli/internal/network"
	"github.com/glabrego/network-cli/internal/optimistic"
	"github.com/glabrego/network-cli/internal/refresh"
	"github.com/glabrego/network-cli/internal/route"
	"github.com/glabrego/network-cli/internal/session"
	tuiactions "github.com/glabrego/network-cli/internal/tui/actions"
	tuiplatform "github.com/glabrego/network-cli/internal/tui/platform"
	tuistate "github.com/glabrego/network-cli/internal/tui/state"
	tuitheme "github.com/glabrego/network-cli/internal/tui/theme"
	tuiview "github.com/glabrego/network-cli/internal/tui/view"
)

const loginRequired = "Login required."

type Service = tuiactions.Service

type Preferences struct {
	Compact     bool
	ShowNumbers bool
}

type Options struct {
	Session   session.Session
	BaseURL   string
	StartPath string
	Logger    *zap.Logger
}

type inputMode int

const (
	modeList inputMode = iota
	modeCompose
	modeEdit
	modeGoto
	modeLikedBy
)

type composeState struct {
	draft      string
	submitting bool
	err        error
}

type likedByState struct {
	postID  int64
	users   []network.User
	loading bool
	err     error
	top     int
}

// Model is the Bubble Tea model of the client. Navigation, fetch and
// optimistic state live behind pointers and are only touched from Update.
type Model struct {
	service Service
	session session.Session
	log     *zap.Logger
	theme   tuitheme.Theme
	baseURL string

	refresh *refresh.Coordinator
	nav     *route.Controller
	posts   *feed.Fetcher[network.PostPage]
	users   *feed.Fetcher[[]network.User]
	profile *feed.Fetcher[network.Profile]
	items   *optimistic.Store

	cursor   int
	anchorID int64
	width    int
	height   int

	mode     inputMode
	compose  composeState
	editID   int64
	gotoPath string
	likedBy  likedByState
	showHelp bool

	status   string
	statusID int
	err      error

	compact     bool
	showNumbers bool

	savePreferencesFn func(Preferences) error
	saveLastPathFn    func(string) error
	openURLFn         func(string) error
	copyURLFn         func(string) error
}

func NewModel(service Service, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	coord := refresh.NewCoordinator()
	return Model{
		service:   service,
		session:   opts.Session,
		log:       logger,
		theme:     tuitheme.Default(),
		baseURL:   opts.BaseURL,
		refresh:   coord,
		nav:       route.NewController(coord, opts.StartPath),
		posts:     feed.New[network.PostPage](),
		users:     feed.New[[]network.User](),
		profile:   feed.New[network.Profile](),
		items:     optimistic.NewStore(),
		openURLFn: tuiplatform.OpenURLInBrowser,
		copyURLFn: tuiplatform.CopyURLToClipboard,
	}
}

func (m Model) Init() tea.Cmd {
	return m.syncFetches()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tuiactions.PostsMsg:
		return m.applyPosts(msg)
	case tuiactions.UsersMsg:
		if !m.users.Resolve(msg.Resp) {
			m.log.Debug("stale users response dropped", zap.Uint64("seq", msg.Resp.Seq))
			return m, nil
		}
		m.cursor = tuistate.ClampCursor(m.cursor, len(m.users.State().Data))
		return m, nil
	case tuiactions.ProfileMsg:
		if !m.profile.Resolve(msg.Resp) {
			m.log.Debug("stale profile response dropped", zap.Uint64("seq", msg.Resp.Seq))
			return m, nil
		}
		st := m.profile.State()
		if st.Status == feed.Loaded {
			m.items.SyncProfile(&st.Data)
		} else {
			m.items.SyncProfile(nil)
		}
		return m, nil
	case tuiactions.LikeResultMsg:
		return m.applyLikeResult(msg)
	case tuiactions.FollowResultMsg:
		return m.applyFollowResult(msg)
	case tuiactions.EditResultMsg:
		return m.applyEditResult(msg)
	case tuiactions.CreateResultMsg:
		return m.applyCreateResult(msg)
	case tuiactions.LikeUsersMsg:
		if m.mode != modeLikedBy || m.likedBy.postID != msg.PostID {
			return m, nil
		}
		m.likedBy.loading = false
		m.likedBy.users = msg.Users
		m.likedBy.err = msg.Err
		return m, nil
	case tuiactions.OpenURLSuccessMsg:
		m.err = nil
		m.status = msg.Status
		m.statusID++
		return m, tuiactions.ClearStatusCmd(m.statusID, 3*time.Second)
	case tuiactions.OpenURLErrorMsg:
		m.err = nil
		m.status = msg.Err.Error()
		m.statusID++
		return m, tuiactions.ClearStatusCmd(m.statusID, 4*time.Second)
	case tuiactions.ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
		}
		return m, nil
	case tuiactions.PreferenceSaveErrorMsg:
		m.err = msg.Err
		m.status = "Could not persist UI preferences"
		return m, nil
	case tuiactions.LastPathSaveErrorMsg:
		m.log.Warn("save last path failed", zap.Error(msg.Err))
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeCompose, modeEdit, modeGoto:
		return m.handleInputKey(msg)
	case modeLikedBy:
		return m.handleLikedByKey(msg)
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "up", "k":
		m.moveCursorBy(-1)
		return m, nil
	case "down", "j":
		m.moveCursorBy(1)
		return m, nil
	case "g":
		m.moveCursorBy(-m.listLen())
		return m, nil
	case "G":
		m.moveCursorBy(m.listLen())
		return m, nil
	case "n":
		return m.turnPage(true)
	case "p":
		return m.turnPage(false)
	case "r":
		bumped := m.nav.Refresh()
		m.err = nil
		m.status = ""
		m.log.Debug("manual refresh", zap.Int("scopes", len(bumped)))
		return m, m.syncFetches()
	case "H":
		return m.navigate(route.Home().Path())
	case "F":
		if !m.session.LoggedIn {
			return m.setStatus(loginRequired)
		}
		return m.navigate(route.UserRoute(route.Following, m.session.UserID).Path())
	case "P":
		if !m.session.LoggedIn {
			return m.setStatus(loginRequired)
		}
		return m.navigate(route.UserRoute(route.Profile, m.session.UserID).Path())
	case "enter", "u":
		return m.openSelectedUser()
	case "w":
		return m.openUserList(route.FollowUsers)
	case "W":
		return m.openUserList(route.FollowerUsers)
	case "l":
		return m.toggleLikeCurrent()
	case "f":
		return m.toggleFollowCurrent()
	case "e":
		return m.startEditCurrent()
	case "c":
		if !m.session.CanMutate() {
			return m.setStatus(loginRequired)
		}
		m.mode = modeCompose
		m.compose = composeState{}
		return m, nil
	case "L":
		return m.openLikedBy()
	case "[":
		t, ok := m.nav.Back()
		if !ok {
			return m.setStatus("No previous page in history")
		}
		return m.afterTransition(t)
	case "]":
		t, ok := m.nav.Forward()
		if !ok {
			return m.setStatus("No next page in history")
		}
		return m.afterTransition(t)
	case ":":
		m.mode = modeGoto
		m.gotoPath = ""
		return m, nil
	case "o":
		return m.openCurrentURL()
	case "y":
		return m.copyCurrentURL()
	case "v":
		m.compact = !m.compact
		m.err = nil
		m.status = "Compact mode: " + onOff(m.compact)
		return m, tuiactions.PersistPreferencesCmd(m.savePreferencesFn, m.preferences())
	case "#":
		m.showNumbers = !m.showNumbers
		m.err = nil
		m.status = "Numbering: " + onOff(m.showNumbers)
		return m, tuiactions.PersistPreferencesCmd(m.savePreferencesFn, m.preferences())
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.cancelInput()
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeyBackspace:
		m.setInput(dropLastRune(m.input()))
		return m, nil
	case tea.KeySpace:
		m.setInput(m.input() + " ")
		return m, nil
	case tea.KeyRunes:
		m.setInput(m.input() + string(msg.Runes))
		return m, nil
	}
	return m, nil
}

func (m Model) handleLikedByKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "L":
		m.mode = modeList
		m.likedBy = likedByState{}
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.likedBy.top > 0 {
			m.likedBy.top--
		}
	case "down", "j":
		if m.likedBy.top < tuiview.DetailMaxTop(len(m.likedByLines()), m.detailBodyHeight()) {
			m.likedBy.top++
		}
	}
	return m, nil
}

func (m Model) input() string {
	switch m.mode {
	case modeCompose:
		return m.compose.draft
	case modeEdit:
		if e, ok := m.items.Edit(m.editID); ok {
			return e.Draft
		}
	case modeGoto:
		return m.gotoPath
	}
	return ""
}

func (m *Model) setInput(text string) {
	switch m.mode {
	case modeCompose:
		if !m.compose.submitting {
			m.compose.draft = text
		}
	case modeEdit:
		if e, ok := m.items.Edit(m.editID); ok {
			e.SetDraft(text)
		}
	case modeGoto:
		m.gotoPath = text
	}
}

func (m Model) cancelInput() (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCompose:
		if m.compose.submitting {
			return m, nil
		}
		m.compose = composeState{}
	case modeEdit:
		e, ok := m.items.Edit(m.editID)
		if ok && e.Submitting {
			return m, nil
		}
		if ok {
			e.Cancel()
		}
		m.editID = 0
	case modeGoto:
		m.gotoPath = ""
	}
	m.mode = modeList
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeGoto:
		path := m.gotoPath
		m.gotoPath = ""
		m.mode = modeList
		if strings.TrimSpace(path) == "" {
			return m, nil
		}
		return m.navigate(path)
	case modeCompose:
		if m.compose.submitting || m.service == nil {
			return m, nil
		}
		if err := network.ValidatePostText(m.compose.draft); err != nil {
			m.compose.err = err
			return m, nil
		}
		m.compose.submitting = true
		m.compose.err = nil
		return m, tuiactions.CreatePostCmd(m.service, m.compose.draft)
	case modeEdit:
		e, ok := m.items.Edit(m.editID)
		if !ok || m.service == nil {
			return m, nil
		}
		post, ok := m.postByID(m.editID)
		if !ok {
			return m, nil
		}
		text, err := e.Submit()
		if err != nil {
			return m, nil
		}
		return m, tuiactions.UpdatePostCmd(m.service, post, text)
	}
	return m, nil
}

func (m Model) navigate(path string) (tea.Model, tea.Cmd) {
	return m.afterTransition(m.nav.Navigate(path))
}

func (m Model) turnPage(next bool) (tea.Model, tea.Cmd) {
	r := m.nav.Route()
	if !r.Paginated() || m.posts.State().Status != feed.Loaded {
		return m, nil
	}
	page := m.posts.State().Data
	link := page.Previous
	if next {
		link = page.Next
	}
	if link == nil || *link == "" {
		return m, nil
	}
	t, ok := m.nav.TurnPage(*link)
	if !ok {
		return m, nil
	}
	return m.afterTransition(t)
}

// afterTransition runs after every path change and after every forced
// refresh of the current path.
func (m Model) afterTransition(t route.Transition) (tea.Model, tea.Cmd) {
	if !t.Changed && len(t.Bumped) == 0 {
		return m, nil
	}
	if t.Changed {
		m.log.Debug("navigate",
			zap.String("from", t.From.Path()),
			zap.String("to", t.To.Path()),
			zap.Bool("resource_changed", t.ResourceChanged))
	}
	if t.ResourceChanged || t.From.PageToken != t.To.PageToken {
		m.cursor = 0
		m.anchorID = 0
	}
	m.err = nil
	m.status = ""
	if m.mode == modeLikedBy {
		m.mode = modeList
		m.likedBy = likedByState{}
	}

	cmds := []tea.Cmd{m.syncFetches()}
	if t.Changed {
		cmds = append(cmds, tuiactions.SaveLastPathCmd(m.saveLastPathFn, t.To.Path()))
	}
	return m, tea.Batch(cmds...)
}

// syncFetches derives the fetch keys of the current route and issues a
// request for every key that changed. Listings the route does not show are
// released.
func (m *Model) syncFetches() tea.Cmd {
	if m.service == nil {
		return nil
	}
	r := m.nav.Route()
	var cmds []tea.Cmd

	switch {
	case r.Paginated() && m.routeAllowed(r):
		m.releaseUsers()
		scope, _ := r.ListScope()
		key := feed.Key{Endpoint: r.Endpoint(), PageToken: r.PageToken, Generation: m.refresh.Generation(scope)}
		if req, ok := m.posts.Sync(key); ok {
			cmds = append(cmds, tuiactions.FetchPostsCmd(m.service, req))
		}
	case r.Family == route.FollowUsers || r.Family == route.FollowerUsers:
		m.releasePosts()
		scope, _ := r.ListScope()
		key := feed.Key{Endpoint: r.Endpoint(), Generation: m.refresh.Generation(scope)}
		if req, ok := m.users.Sync(key); ok {
			cmds = append(cmds, tuiactions.FetchUsersCmd(m.service, req))
		}
	default:
		m.releasePosts()
		m.releaseUsers()
	}

	if scope, ok := r.InfoScope(); ok {
		key := feed.Key{Endpoint: "/api/v1/user/" + r.ResourceID + "/", Generation: m.refresh.Generation(scope)}
		if req, ok := m.profile.Sync(key); ok {
			cmds = append(cmds, tuiactions.FetchProfileCmd(m.service, req, r.UserID()))
		}
	} else if m.profile.State().Status != feed.Idle {
		m.profile.Release()
		m.items.SyncProfile(nil)
	}
	return tea.Batch(cmds...)
}

func (m *Model) releasePosts() {
	if m.posts.State().Status == feed.Idle && m.posts.InFlight() == 0 {
		return
	}
	m.posts.Release()
	m.items.Sync(nil)
}

func (m *Model) releaseUsers() {
	if m.users.State().Status == feed.Idle && m.users.InFlight() == 0 {
		return
	}
	m.users.Release()
}

func (m Model) routeAllowed(r route.Route) bool {
	return r.Family != route.Following || m.session.LoggedIn
}

func (m Model) applyPosts(msg tuiactions.PostsMsg) (tea.Model, tea.Cmd) {
	if !m.posts.Resolve(msg.Resp) {
		m.log.Debug("stale posts response dropped", zap.Uint64("seq", msg.Resp.Seq))
		return m, nil
	}
	st := m.posts.State()
	if st.Status == feed.Failed {
		m.items.Sync(nil)
		m.cursor = 0
		m.anchorID = 0
		return m.leaveEditIfGone(), nil
	}
	m.items.Sync(st.Data.Results)
	m.cursor = tuistate.RestoreCursor(st.Data.Results, m.anchorID, m.cursor)
	m.anchorID = 0
	if post, ok := m.currentPost(); ok {
		m.anchorID = post.ID
	}
	return m.leaveEditIfGone(), nil
}

// leaveEditIfGone drops back to the list when the post being edited is no
// longer on screen.
func (m Model) leaveEditIfGone() Model {
	if m.mode != modeEdit {
		return m
	}
	if _, ok := m.items.Edit(m.editID); !ok {
		m.mode = modeList
		m.editID = 0
	}
	return m
}

func (m Model) applyLikeResult(msg tuiactions.LikeResultMsg) (tea.Model, tea.Cmd) {
	like, ok := m.items.Like(msg.PostID)
	if msg.Err != nil {
		if ok {
			like.Fail(msg.Ticket)
		}
		m.err = msg.Err
		m.status = ""
		return m, nil
	}
	if ok && !like.Confirm(msg.Ticket, msg.Count) {
		m.log.Debug("stale like response ignored", zap.Int64("post_id", msg.PostID), zap.Uint64("seq", msg.Ticket.Seq))
	}
	return m, nil
}

func (m Model) applyFollowResult(msg tuiactions.FollowResultMsg) (tea.Model, tea.Cmd) {
	follow, ok := m.items.Follow(msg.UserID)
	if msg.Err != nil {
		if ok {
			follow.Fail(msg.Ticket)
		}
		m.err = msg.Err
		m.status = ""
		return m, nil
	}
	if ok {
		follow.Confirm(msg.Ticket, msg.User)
	}

	m.refresh.Bump(refresh.UserScope(refresh.ProfileInfo, msg.UserID))
	m.refresh.Bump(refresh.UserScope(refresh.FollowerUsers, msg.UserID))
	if m.session.LoggedIn {
		m.refresh.Bump(refresh.UserScope(refresh.ProfileInfo, m.session.UserID))
		m.refresh.Bump(refresh.UserScope(refresh.FollowUsers, m.session.UserID))
		m.refresh.Bump(refresh.UserScope(refresh.FollowingFeed, m.session.UserID))
	}
	return m, m.syncFetches()
}

func (m Model) applyEditResult(msg tuiactions.EditResultMsg) (tea.Model, tea.Cmd) {
	e, ok := m.items.Edit(msg.PostID)
	if !ok {
		return m, nil
	}
	if msg.Err != nil {
		e.Fail(msg.Err)
		return m, nil
	}
	e.Confirm(msg.Post)
	if m.mode == modeEdit && m.editID == msg.PostID {
		m.mode = modeList
		m.editID = 0
	}
	return m.setStatus("Post updated")
}

// applyCreateResult returns to page 1 of the global feed and forces it to
// be fetched again so the new post shows up.
func (m Model) applyCreateResult(msg tuiactions.CreateResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.compose.submitting = false
		m.compose.err = msg.Err
		return m, nil
	}
	m.compose = composeState{}
	if m.mode == modeCompose {
		m.mode = modeList
	}
	t := m.nav.Navigate(route.Home().Path())
	reset := m.nav.Reset()
	t.Bumped = append(t.Bumped, reset.Bumped...)
	next, cmd := m.afterTransition(t)
	model := next.(Model)
	model.status = "Posted"
	return model, cmd
}

func (m Model) toggleLikeCurrent() (tea.Model, tea.Cmd) {
	post, ok := m.currentPost()
	if !ok || m.service == nil {
		return m, nil
	}
	if !m.session.CanMutate() {
		return m.setStatus(loginRequired)
	}
	like, ok := m.items.Like(post.ID)
	if !ok {
		return m, nil
	}
	ticket := like.Begin()
	m.err = nil
	return m, tuiactions.LikeCmd(m.service, post.ID, ticket)
}

func (m Model) toggleFollowCurrent() (tea.Model, tea.Cmd) {
	r := m.nav.Route()
	if _, ok := r.InfoScope(); !ok || m.service == nil {
		return m, nil
	}
	userID := r.UserID()
	if !m.session.CanMutate() {
		return m.setStatus(loginRequired)
	}
	if !m.session.CanFollow(userID) {
		return m, nil
	}
	follow, ok := m.items.Follow(userID)
	if !ok {
		return m.setStatus("Profile is still loading")
	}
	ticket := follow.Begin()
	m.err = nil
	return m, tuiactions.FollowCmd(m.service, userID, ticket)
}

func (m Model) startEditCurrent() (tea.Model, tea.Cmd) {
	post, ok := m.currentPost()
	if !ok {
		return m, nil
	}
	if !m.session.Owns(post.CreatedBy.ID) {
		if !m.session.LoggedIn {
			return m.setStatus(loginRequired)
		}
		return m.setStatus("Only your own posts can be edited")
	}
	e, ok := m.items.Edit(post.ID)
	if !ok {
		return m, nil
	}
	if other, editing := m.items.Editing(); editing && other != post.ID {
		if oe, ok := m.items.Edit(other); ok && !oe.Submitting {
			oe.Cancel()
		}
	}
	e.Start()
	m.mode = modeEdit
	m.editID = post.ID
	return m, nil
}

func (m Model) openSelectedUser() (tea.Model, tea.Cmd) {
	r := m.nav.Route()
	if r.Paginated() {
		post, ok := m.currentPost()
		if !ok {
			return m, nil
		}
		return m.navigate(route.UserRoute(route.Profile, post.CreatedBy.ID).Path())
	}
	users := m.currentUsers()
	if len(users) == 0 {
		return m, nil
	}
	user := users[tuistate.ClampCursor(m.cursor, len(users))]
	return m.navigate(route.UserRoute(route.Profile, user.ID).Path())
}

func (m Model) openUserList(family route.Family) (tea.Model, tea.Cmd) {
	userID := int64(0)
	if _, ok := m.nav.Route().InfoScope(); ok {
		userID = m.nav.Route().UserID()
	} else if m.session.LoggedIn {
		userID = m.session.UserID
	}
	if userID == 0 {
		return m.setStatus(loginRequired)
	}
	return m.navigate(route.UserRoute(family, userID).Path())
}

func (m Model) openLikedBy() (tea.Model, tea.Cmd) {
	post, ok := m.currentPost()
	if !ok || m.service == nil {
		return m, nil
	}
	m.mode = modeLikedBy
	m.likedBy = likedByState{postID: post.ID, loading: true}
	return m, tuiactions.LikeUsersCmd(m.service, post.ID)
}

func (m Model) currentWebURL() (string, error) {
	return tuiplatform.ValidateWebURL(route.WebURL(m.baseURL, m.nav.Route()))
}

func (m Model) openCurrentURL() (tea.Model, tea.Cmd) {
	webURL, err := m.currentWebURL()
	if err != nil {
		m.err = nil
		m.status = err.Error()
		m.statusID++
		return m, tuiactions.ClearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, tuiactions.OpenURLCmd(webURL, m.openURLFn, m.copyURLFn)
}

func (m Model) copyCurrentURL() (tea.Model, tea.Cmd) {
	webURL, err := m.currentWebURL()
	if err != nil {
		m.err = nil
		m.status = err.Error()
		m.statusID++
		return m, tuiactions.ClearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, tuiactions.CopyURLCmd(webURL, m.copyURLFn)
}

func (m Model) setStatus(status string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.status = status
	return m, nil
}

func (m Model) currentPosts() []network.Post {
	r := m.nav.Route()
	if !r.Paginated() || !m.routeAllowed(r) {
		return nil
	}
	st := m.posts.State()
	if st.Status != feed.Loaded {
		return nil
	}
	return st.Data.Results
}

func (m Model) currentUsers() []network.User {
	r := m.nav.Route()
	if r.Family != route.FollowUsers && r.Family != route.FollowerUsers {
		return nil
	}
	st := m.users.State()
	if st.Status != feed.Loaded {
		return nil
	}
	return st.Data
}

func (m Model) currentPost() (network.Post, bool) {
	posts := m.currentPosts()
	if len(posts) == 0 {
		return network.Post{}, false
	}
	return posts[tuistate.ClampCursor(m.cursor, len(posts))], true
}

func (m Model) postByID(postID int64) (network.Post, bool) {
	posts := m.currentPosts()
	if idx := tuistate.PostIndexByID(posts, postID); idx >= 0 {
		return posts[idx], true
	}
	return network.Post{}, false
}

func (m Model) listLen() int {
	if m.nav.Route().Paginated() {
		return len(m.currentPosts())
	}
	return len(m.currentUsers())
}

func (m *Model) moveCursorBy(delta int) {
	m.cursor = tuistate.ClampCursor(m.cursor+delta, m.listLen())
	if post, ok := m.currentPost(); ok {
		m.anchorID = post.ID
	}
}

func (m Model) View() string {
	var b strings.Builder
	r := m.nav.Route()
	b.WriteString(tuiview.Header(r.Title(), r.Path(), m.theme))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("Help (? to close)\n\n")
		b.WriteString(m.helpView())
		b.WriteString("\n\n")
		b.WriteString(m.messagePanel())
		b.WriteString("\n")
		return b.String()
	}
	if m.mode == modeLikedBy {
		b.WriteString("j/k scroll | esc back | q quit\n\n")
		b.WriteString(tuiview.RenderDetailLines(m.likedByLines(), m.likedBy.top, m.detailBodyHeight()))
		b.WriteString("\n")
		b.WriteString(m.messagePanel())
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(tuiview.Toolbar(r.Family, m.session.LoggedIn))
	b.WriteString("\n\n")

	hasHeader := false
	if _, ok := r.InfoScope(); ok {
		hasHeader = true
		b.WriteString(m.profileHeader(r))
		b.WriteString("\n\n")
	}

	switch {
	case r.Family == route.NotFound:
		b.WriteString(m.theme.Error.Render("Not Found: " + r.Path()))
		b.WriteString("\n")
	case !m.routeAllowed(r):
		b.WriteString(m.theme.Error.Render(loginRequired))
		b.WriteString("\n")
	case r.Paginated():
		b.WriteString(m.postsView(hasHeader))
	default:
		b.WriteString(m.usersView(hasHeader))
	}

	switch m.mode {
	case modeCompose:
		b.WriteString("\n")
		b.WriteString(tuiview.Composer(tuiview.ComposerParams{
			Label:      "New post",
			Draft:      m.compose.draft,
			Submitting: m.compose.submitting,
			Err:        network.Message(m.compose.err),
			Width:      m.contentWidth(),
		}, m.theme))
	case modeEdit:
		if e, ok := m.items.Edit(m.editID); ok {
			b.WriteString("\n")
			b.WriteString(tuiview.Composer(tuiview.ComposerParams{
				Label:      "Edit post",
				Draft:      e.Draft,
				Submitting: e.Submitting,
				Err:        network.Message(e.Err),
				Width:      m.contentWidth(),
			}, m.theme))
		}
	case modeGoto:
		b.WriteString("\n")
		b.WriteString("Go to: " + m.gotoPath + "_\n")
	}

	b.WriteString("\n")
	b.WriteString(m.messagePanel())
	b.WriteString("\n")
	b.WriteString(tuiview.CompactFooter(r.Path(), m.listLen(), m.compact, m.showNumbers, m.theme))
	b.WriteString("\n")
	return b.String()
}

func (m Model) profileHeader(r route.Route) string {
	st := m.profile.State()
	switch st.Status {
	case feed.Failed:
		return m.theme.Error.Render(network.Message(st.Err))
	case feed.Loaded:
	default:
		return "Loading profile..."
	}
	params := tuiview.ProfileHeaderParams{User: st.Data.User, CanFollow: m.session.CanFollow(r.UserID())}
	if follow, ok := m.items.Follow(st.Data.User.ID); ok {
		params.User = follow.User
		params.Following = follow.Following()
		params.FollowPending = follow.Pending()
	}
	return tuiview.ProfileHeader(params, m.theme)
}

func (m Model) postsView(hasHeader bool) string {
	st := m.posts.State()
	switch st.Status {
	case feed.Idle, feed.Loading:
		return "Loading posts...\n"
	case feed.Failed:
		return m.theme.Error.Render(network.Message(st.Err)) + "\n"
	}
	posts := st.Data.Results
	if len(posts) == 0 {
		return m.theme.Empty.Render(tuiview.EmptyText) + "\n"
	}

	var b strings.Builder
	rows := tuistate.ListHeight(m.height, hasHeader)
	perPost := 2
	if m.compact {
		perPost = 1
	}
	cursor := tuistate.ClampCursor(m.cursor, len(posts))
	start, end := tuistate.CenteredWindow(len(posts), cursor, max(1, rows/perPost))
	for i := start; i < end; i++ {
		for _, line := range tuiview.RenderPostLines(m.postLineParams(posts[i], i, i == cursor), m.theme) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if pager := tuiview.Pager(st.Data.HasPrevious(), st.Data.HasNext(), m.theme); pager != "" {
		b.WriteString("\n")
		b.WriteString(pager)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) postLineParams(post network.Post, pos int, active bool) tuiview.PostLineParams {
	params := tuiview.PostLineParams{
		Post:        post,
		Text:        post.Text,
		Edited:      post.Edited(),
		Liked:       post.IsLiked,
		LikeCount:   post.LikeCount,
		Self:        m.session.Owns(post.CreatedBy.ID),
		Compact:     m.compact,
		ShowNumbers: m.showNumbers,
		Pos:         pos,
		Active:      active,
		Width:       m.contentWidth(),
	}
	if like, ok := m.items.Like(post.ID); ok {
		params.Liked = like.Liked()
		params.LikePending = like.Pending()
		params.LikeCount = like.Count
	}
	if e, ok := m.items.Edit(post.ID); ok {
		params.Text = e.Text
		params.Edited = e.Edited
	}
	return params
}

func (m Model) usersView(hasHeader bool) string {
	st := m.users.State()
	switch st.Status {
	case feed.Idle, feed.Loading:
		return "Loading users...\n"
	case feed.Failed:
		return m.theme.Error.Render(network.Message(st.Err)) + "\n"
	}
	users := st.Data
	if len(users) == 0 {
		return m.theme.Empty.Render(tuiview.EmptyText) + "\n"
	}
	var b strings.Builder
	cursor := tuistate.ClampCursor(m.cursor, len(users))
	start, end := tuistate.CenteredWindow(len(users), cursor, tuistate.ListHeight(m.height, hasHeader))
	for i := start; i < end; i++ {
		b.WriteString(tuiview.RenderUserLine(tuiview.UserLineParams{
			User:   users[i],
			Self:   m.session.Owns(users[i].ID),
			Pos:    i,
			Active: i == cursor,
			Width:  m.contentWidth(),
		}, m.theme))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) likedByLines() []string {
	post, ok := m.postByID(m.likedBy.postID)
	if !ok {
		return []string{"Post is no longer listed."}
	}
	text := post.Text
	if e, ok := m.items.Edit(post.ID); ok {
		text = e.Text
	}
	if m.likedBy.loading {
		return []string{"Loading likes..."}
	}
	if m.likedBy.err != nil {
		return []string{network.Message(m.likedBy.err)}
	}
	return tuiview.LikedByLines(post, text, m.likedBy.users, m.contentWidth(), tuiview.WrapText)
}

func (m Model) messagePanel() string {
	loading := m.posts.State().Status == feed.Loading ||
		m.users.State().Status == feed.Loading ||
		m.profile.State().Status == feed.Loading
	return tuiview.CompactMessage(loading, m.err != nil, m.status, network.Message(m.err), m.theme)
}

func (m Model) helpView() string {
	lines := []string{
		"Navigation:",
		"  j/k or arrows move, g/G jump top/bottom",
		"  n/p next/previous page, [ ] history back/forward, : go to path",
		"  H all posts, F following feed, P own profile",
		"  enter/u open author profile, w/W follows/followers",
		"Actions:",
		"  l like, e edit own post, c compose, f follow, L liked by",
		"  r refresh, o open in browser, y copy link",
		"Options:",
		"  v compact mode, # numbering",
	}
	return strings.Join(lines, "\n")
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

func (m Model) detailBodyHeight() int {
	if m.height > 0 {
		if h := m.height - 6; h > 3 {
			return h
		}
	}
	return 16
}

func (m *Model) ApplyPreferences(prefs Preferences) {
	m.compact = prefs.Compact
	m.showNumbers = prefs.ShowNumbers
}

func (m *Model) SetPreferencesSaver(saveFn func(Preferences) error) {
	m.savePreferencesFn = saveFn
}

func (m *Model) SetLastPathSaver(saveFn func(string) error) {
	m.saveLastPathFn = saveFn
}

func (m Model) preferences() Preferences {
	return Preferences{
		Compact:     m.compact,
		ShowNumbers: m.showNumbers,
	}
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
