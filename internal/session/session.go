package session

// Session is the read-only view of who is using the client. It is built once
// from configuration and handed to every component that needs it.
type Session struct {
	LoggedIn bool
	UserID   int64
	Username string
}

func Anonymous() Session {
	return Session{}
}

func New(userID int64, username string) Session {
	if userID <= 0 {
		return Anonymous()
	}
	return Session{LoggedIn: true, UserID: userID, Username: username}
}

// Owns reports whether an item created by ownerID may be mutated by this session.
func (s Session) Owns(ownerID int64) bool {
	return s.LoggedIn && ownerID > 0 && s.UserID == ownerID
}

func (s Session) CanMutate() bool {
	return s.LoggedIn
}

// CanFollow is false for anonymous sessions and for the session's own profile.
func (s Session) CanFollow(userID int64) bool {
	return s.LoggedIn && userID != s.UserID
}
