// Package refresh keeps one generation counter per data scope. A consumer
// folds the generation of its scope into its fetch key, so bumping a scope
// forces a refetch with otherwise identical parameters. Only change is
// observable: bumping twice before the consumer looks yields one refetch.
package refresh

import "strconv"

type Scope string

const GlobalFeed Scope = "feed"

func FollowingFeed(userID string) Scope { return scoped("following", userID) }
func ProfileInfo(userID string) Scope   { return scoped("profile-info", userID) }
func ProfilePosts(userID string) Scope  { return scoped("profile-posts", userID) }
func FollowUsers(userID string) Scope   { return scoped("follow-users", userID) }
func FollowerUsers(userID string) Scope { return scoped("follower-users", userID) }

// UserScope formats a numeric user id for the scope constructors.
func UserScope(fn func(string) Scope, userID int64) Scope {
	return fn(strconv.FormatInt(userID, 10))
}

func scoped(kind, id string) Scope {
	return Scope(kind + "/" + id)
}

// Coordinator is owned by the UI event loop and is not safe for concurrent use.
type Coordinator struct {
	generations map[Scope]uint64
}

func NewCoordinator() *Coordinator {
	return &Coordinator{generations: make(map[Scope]uint64)}
}

func (c *Coordinator) Bump(scope Scope) uint64 {
	c.generations[scope]++
	return c.generations[scope]
}

func (c *Coordinator) Generation(scope Scope) uint64 {
	return c.generations[scope]
}
