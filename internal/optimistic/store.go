package optimistic

import "github.com/glabrego/network-cli/internal/network"

// Store keeps one state per item in view. Items leaving the view lose their
// state; items entering it are seeded from the server values.
type Store struct {
	likes   map[int64]*Like
	edits   map[int64]*Edit
	follows map[int64]*Follow
}

func NewStore() *Store {
	return &Store{
		likes:   make(map[int64]*Like),
		edits:   make(map[int64]*Edit),
		follows: make(map[int64]*Follow),
	}
}

// Sync replaces the set of posts in view. Known posts without an action in
// flight pick up the fresh server values.
func (s *Store) Sync(posts []network.Post) {
	seen := make(map[int64]struct{}, len(posts))
	for _, p := range posts {
		seen[p.ID] = struct{}{}
		if l, ok := s.likes[p.ID]; ok {
			l.reseed(p)
		} else {
			s.likes[p.ID] = NewLike(p.IsLiked, p.LikeCount)
		}
		if e, ok := s.edits[p.ID]; ok {
			e.reseed(p)
		} else {
			s.edits[p.ID] = NewEdit(p)
		}
	}
	for id := range s.likes {
		if _, ok := seen[id]; !ok {
			delete(s.likes, id)
			delete(s.edits, id)
		}
	}
}

// SyncProfile replaces the profile in view. A nil profile clears it.
func (s *Store) SyncProfile(p *network.Profile) {
	if p == nil {
		for id := range s.follows {
			delete(s.follows, id)
		}
		return
	}
	for id := range s.follows {
		if id != p.User.ID {
			delete(s.follows, id)
		}
	}
	if f, ok := s.follows[p.User.ID]; ok {
		f.reseed(*p)
		return
	}
	s.follows[p.User.ID] = NewFollow(*p)
}

func (s *Store) Like(postID int64) (*Like, bool) {
	l, ok := s.likes[postID]
	return l, ok
}

func (s *Store) Edit(postID int64) (*Edit, bool) {
	e, ok := s.edits[postID]
	return e, ok
}

func (s *Store) Follow(userID int64) (*Follow, bool) {
	f, ok := s.follows[userID]
	return f, ok
}

// Editing reports the post currently in edit mode, if any.
func (s *Store) Editing() (int64, bool) {
	for id, e := range s.edits {
		if e.Editing {
			return id, true
		}
	}
	return 0, false
}

func (s *Store) Len() int {
	return len(s.likes)
}
