// Package backendtest is an in-memory stand-in for the network REST API. It
// follows the server's contract closely enough (pagination links, detail
// errors, CSRF header, session cookie) to drive the client end to end.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glabrego/network-cli/internal/network"
)

const defaultPageSize = 10

type post struct {
	id        int64
	text      string
	author    int64
	createdAt time.Time
	updatedAt *time.Time
	likes     map[int64]struct{}
}

type override struct {
	status int
	body   string
}

// Server holds the fake backend state. All methods are safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	users     map[int64]network.User
	posts     map[int64]*post
	follows   map[int64]map[int64]struct{}
	sessions  map[string]int64
	overrides map[string]override
	requests  []string
	nextUser  int64
	nextPost  int64
	pageSize  int
	now       func() time.Time

	router chi.Router
}

func New() *Server {
	s := &Server{
		users:     make(map[int64]network.User),
		posts:     make(map[int64]*post),
		follows:   make(map[int64]map[int64]struct{}),
		sessions:  make(map[string]int64),
		overrides: make(map[string]override),
		pageSize:  defaultPageSize,
		now:       func() time.Time { return time.Date(2026, 5, 15, 11, 33, 0, 0, time.UTC) },
	}
	s.routes()
	return s
}

// Start serves the fake backend on a local listener until the test ends.
func Start(tb interface {
	Helper()
	Cleanup(func())
}) (*Server, *httptest.Server) {
	tb.Helper()
	s := New()
	ts := httptest.NewServer(s)
	tb.Cleanup(ts.Close)
	return s, ts
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.applyOverrides)

	r.Route("/api/v1/post", func(r chi.Router) {
		r.Get("/", s.handleListPosts)
		r.With(s.requireSession).Post("/", s.handleCreatePost)
		r.With(s.requireSession).Put("/{id}/", s.handleUpdatePost)
		r.With(s.requireSession).Put("/{id}/like/", s.handleLike)
		r.With(s.requireSession).Delete("/{id}/like/", s.handleUnlike)
		r.Get("/{id}/like-user/", s.handleLikeUsers)
	})
	r.Route("/api/v1/user", func(r chi.Router) {
		r.With(s.requireSession).Get("/check-follow/{id}/", s.handleCheckFollow)
		r.Get("/{id}/", s.handleGetUser)
		r.Get("/{id}/posts", s.handleUserPosts)
		r.Get("/{id}/following-posts", s.handleFollowingPosts)
		r.Get("/{id}/follow-user/", s.handleFollowUsers)
		r.Get("/{id}/follower-user/", s.handleFollowerUsers)
		r.With(s.requireSession).Put("/{id}/follow/", s.handleFollow)
		r.With(s.requireSession).Delete("/{id}/follow/", s.handleUnfollow)
	})
	s.router = r
}

func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.pageSize = n
	}
}

func (s *Server) AddUser(username string) network.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u := network.User{ID: s.nextUser, Username: username}
	s.users[u.ID] = u
	return u
}

func (s *Server) AddSession(sessionID string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = userID
}

func (s *Server) AddPost(userID int64, text string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPostLocked(userID, text)
}

func (s *Server) addPostLocked(userID int64, text string) int64 {
	s.nextPost++
	s.posts[s.nextPost] = &post{
		id:        s.nextPost,
		text:      text,
		author:    userID,
		createdAt: s.now(),
		likes:     make(map[int64]struct{}),
	}
	return s.nextPost
}

func (s *Server) AddFollow(source, destination int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followLocked(source, destination)
}

func (s *Server) AddLike(postID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[postID]; ok {
		p.likes[userID] = struct{}{}
	}
}

// Override makes every request matching method and path answer with status
// and body until cleared with ClearOverride.
func (s *Server) Override(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{status: status, body: body}
}

func (s *Server) ClearOverride(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, method+" "+path)
}

// Requests returns "METHOD /path?query" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) PostText(postID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[postID]; ok {
		return p.text
	}
	return ""
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) applyOverrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		o, ok := s.overrides[r.Method+" "+r.URL.Path]
		if !ok {
			o, ok = s.overrides[r.Method+" "+r.URL.RequestURI()]
		}
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if o.body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(o.status)
		if o.body != "" {
			_, _ = w.Write([]byte(o.body))
		}
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(network.SessionCookieName)
		if err != nil {
			writeDetail(w, http.StatusForbidden, "Authentication credentials were not provided.")
			return
		}
		s.mu.Lock()
		_, ok := s.sessions[cookie.Value]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusForbidden, "Invalid session.")
			return
		}
		if r.Method != http.MethodGet {
			token, err := r.Cookie(network.CSRFCookieName)
			if err != nil || token.Value == "" || r.Header.Get(network.CSRFHeader) != token.Value {
				writeDetail(w, http.StatusForbidden, "CSRF Failed: CSRF token missing or incorrect.")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// viewer returns the session user or 0 when the request is anonymous.
func (s *Server) viewer(r *http.Request) int64 {
	cookie, err := r.Cookie(network.SessionCookieName)
	if err != nil {
		return 0
	}
	return s.sessions[cookie.Value]
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writePostPage(w, r, s.postsWhere(func(*post) bool { return true }))
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userParam(w, r)
	if !ok {
		return
	}
	s.writePostPage(w, r, s.postsWhere(func(p *post) bool { return p.author == id }))
}

func (s *Server) handleFollowingPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userParam(w, r)
	if !ok {
		return
	}
	following := s.follows[id]
	s.writePostPage(w, r, s.postsWhere(func(p *post) bool {
		_, ok := following[p.author]
		return ok
	}))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"text": {"This field may not be blank."}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.addPostLocked(s.viewer(r), body.Text)
	writeJSON(w, http.StatusCreated, s.postJSON(s.posts[id], s.viewer(r)))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"text": {"This field may not be blank."}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postParam(w, r)
	if !ok {
		return
	}
	if p.author != s.viewer(r) {
		writeDetail(w, http.StatusForbidden, "Permission denied.")
		return
	}
	p.text = body.Text
	now := s.now()
	p.updatedAt = &now
	writeJSON(w, http.StatusOK, s.postJSON(p, s.viewer(r)))
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postParam(w, r)
	if !ok {
		return
	}
	viewer := s.viewer(r)
	if _, liked := p.likes[viewer]; liked {
		writeDetail(w, http.StatusBadRequest, "The id post is already Liked.")
		return
	}
	p.likes[viewer] = struct{}{}
	writeJSON(w, http.StatusCreated, map[string]int{"count": len(p.likes)})
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postParam(w, r)
	if !ok {
		return
	}
	delete(p.likes, s.viewer(r))
	writeJSON(w, http.StatusCreated, map[string]int{"count": len(p.likes)})
}

func (s *Server) handleLikeUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postParam(w, r)
	if !ok {
		return
	}
	ids := make([]int64, 0, len(p.likes))
	for id := range p.likes {
		ids = append(ids, id)
	}
	writeJSON(w, http.StatusOK, s.usersJSON(ids))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.userJSON(id))
}

func (s *Server) handleCheckFollow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not Found.")
		return
	}
	_, following := s.follows[s.viewer(r)][id]
	writeJSON(w, http.StatusOK, map[string]bool{"check_follow": following})
}

func (s *Server) handleFollowUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userParam(w, r)
	if !ok {
		return
	}
	ids := make([]int64, 0, len(s.follows[id]))
	for dst := range s.follows[id] {
		ids = append(ids, dst)
	}
	writeJSON(w, http.StatusOK, s.usersJSON(ids))
}

func (s *Server) handleFollowerUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userParam(w, r)
	if !ok {
		return
	}
	var ids []int64
	for src, dsts := range s.follows {
		if _, ok := dsts[id]; ok {
			ids = append(ids, src)
		}
	}
	writeJSON(w, http.StatusOK, s.usersJSON(ids))
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userParam(w, r)
	if !ok {
		return
	}
	viewer := s.viewer(r)
	if _, exists := s.follows[viewer][id]; exists {
		writeDetail(w, http.StatusBadRequest, "The id user is already followed.")
		return
	}
	s.followLocked(viewer, id)
	writeJSON(w, http.StatusCreated, s.userJSON(id))
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userParam(w, r)
	if !ok {
		return
	}
	viewer := s.viewer(r)
	if _, exists := s.follows[viewer][id]; !exists {
		writeDetail(w, http.StatusBadRequest, "The id user is not followed.")
		return
	}
	delete(s.follows[viewer], id)
	writeJSON(w, http.StatusCreated, s.userJSON(id))
}

func (s *Server) followLocked(source, destination int64) {
	if s.follows[source] == nil {
		s.follows[source] = make(map[int64]struct{})
	}
	s.follows[source][destination] = struct{}{}
}

func (s *Server) userParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not Found.")
		return 0, false
	}
	if _, ok := s.users[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Not Found.")
		return 0, false
	}
	return id, true
}

func (s *Server) postParam(w http.ResponseWriter, r *http.Request) (*post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not Found.")
		return nil, false
	}
	p, ok := s.posts[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not Found.")
		return nil, false
	}
	return p, true
}

func (s *Server) postsWhere(keep func(*post) bool) []*post {
	out := make([]*post, 0, len(s.posts))
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id > out[j].id })
	return out
}

func (s *Server) writePostPage(w http.ResponseWriter, r *http.Request, posts []*post) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeDetail(w, http.StatusNotFound, "Invalid page.")
			return
		}
		page = n
	}
	start := (page - 1) * s.pageSize
	if start > 0 && start >= len(posts) {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}
	end := start + s.pageSize
	if end > len(posts) {
		end = len(posts)
	}

	viewer := s.viewer(r)
	results := make([]map[string]any, 0, end-start)
	for _, p := range posts[start:end] {
		results = append(results, s.postJSON(p, viewer))
	}

	base := "http://" + r.Host + r.URL.Path
	var next, previous *string
	if end < len(posts) {
		link := fmt.Sprintf("%s?page=%d", base, page+1)
		next = &link
	}
	switch {
	case page == 2:
		previous = &base
	case page > 2:
		link := fmt.Sprintf("%s?page=%d", base, page-1)
		previous = &link
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(posts),
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func (s *Server) postJSON(p *post, viewer int64) map[string]any {
	_, liked := p.likes[viewer]
	var updated any
	if p.updatedAt != nil {
		updated = p.updatedAt.Format("2006-01-02 15:04")
	}
	return map[string]any{
		"id":         p.id,
		"text":       p.text,
		"created_by": s.userJSON(p.author),
		"created_at": p.createdAt.Format("2006-01-02 15:04"),
		"updated_at": updated,
		"like_count": len(p.likes),
		"is_liked":   liked,
	}
}

func (s *Server) userJSON(id int64) network.User {
	u := s.users[id]
	u.FollowCount = len(s.follows[id])
	count := 0
	for _, dsts := range s.follows {
		if _, ok := dsts[id]; ok {
			count++
		}
	}
	u.FollowerCount = count
	return u
}

func (s *Server) usersJSON(ids []int64) []network.User {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]network.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.userJSON(id))
	}
	return out
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
