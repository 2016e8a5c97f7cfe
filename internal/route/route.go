package route

import (
	"strconv"
	"strings"

	"github.com/glabrego/network-cli/internal/refresh"
)

type Family string

const (
	Feed          Family = "feed"
	Following     Family = "following"
	Profile       Family = "profile"
	FollowUsers   Family = "follow-users"
	FollowerUsers Family = "follower-users"
	NotFound      Family = "not-found"
)

const pagePrefix = "page="

// Route is the parsed form of a navigation path. Path is derived from the
// other fields and never stored on its own.
type Route struct {
	Family     Family
	ResourceID string
	PageToken  string

	raw string
}

func Home() Route {
	return Route{Family: Feed}
}

func UserRoute(family Family, userID int64) Route {
	return Route{Family: family, ResourceID: strconv.FormatInt(userID, 10)}
}

// Parse accepts canonical paths as well as the browser hash forms
// ("#user/3", "/#/user/3"). Unknown paths produce a NotFound route.
func Parse(path string) Route {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "/")
	clean = strings.TrimPrefix(clean, "#")
	clean = strings.Trim(clean, "/")
	if clean == "" {
		return Home()
	}

	segments := strings.Split(clean, "/")
	notFound := Route{Family: NotFound, raw: "/" + clean}

	if len(segments) == 1 {
		if token, ok := pageSegment(segments[0]); ok {
			return Route{Family: Feed, PageToken: token}
		}
		return notFound
	}

	id, ok := canonicalID(segments[1])
	if !ok {
		return notFound
	}

	switch segments[0] {
	case "following":
		switch len(segments) {
		case 2:
			return Route{Family: Following, ResourceID: id}
		case 3:
			if token, ok := pageSegment(segments[2]); ok {
				return Route{Family: Following, ResourceID: id, PageToken: token}
			}
		}
	case "user":
		switch len(segments) {
		case 2:
			return Route{Family: Profile, ResourceID: id}
		case 3:
			switch segments[2] {
			case "follow-users":
				return Route{Family: FollowUsers, ResourceID: id}
			case "follower-users":
				return Route{Family: FollowerUsers, ResourceID: id}
			}
			if token, ok := pageSegment(segments[2]); ok {
				return Route{Family: Profile, ResourceID: id, PageToken: token}
			}
		}
	}
	return notFound
}

// pageSegment parses "page=N". Page 1 is reported as the empty token so it is
// never written back into a path.
func pageSegment(segment string) (string, bool) {
	if !strings.HasPrefix(segment, pagePrefix) {
		return "", false
	}
	token := strings.TrimPrefix(segment, pagePrefix)
	if token == "" {
		return "", false
	}
	return normalizeToken(token), true
}

func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "1" {
		return ""
	}
	return token
}

// canonicalID drops leading zeros so "/user/03" and "/user/3" share one
// resource and one set of refresh scopes.
func canonicalID(id string) (string, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// Path is the canonical path for the route.
func (r Route) Path() string {
	var base string
	switch r.Family {
	case Feed:
		if r.PageToken == "" {
			return "/"
		}
		return "/" + pagePrefix + r.PageToken
	case Following:
		base = "/following/" + r.ResourceID
	case Profile:
		base = "/user/" + r.ResourceID
	case FollowUsers:
		return "/user/" + r.ResourceID + "/follow-users"
	case FollowerUsers:
		return "/user/" + r.ResourceID + "/follower-users"
	default:
		if r.raw == "" {
			return "/"
		}
		return r.raw
	}
	if r.PageToken == "" {
		return base
	}
	return base + "/" + pagePrefix + r.PageToken
}

func (r Route) Paginated() bool {
	return r.Family == Feed || r.Family == Following || r.Family == Profile
}

// WithPage returns the same resource at the given page; empty means page 1.
func (r Route) WithPage(token string) Route {
	if !r.Paginated() {
		return r
	}
	r.PageToken = normalizeToken(token)
	return r
}

func (r Route) Base() Route {
	return r.WithPage("")
}

func (r Route) SameResource(other Route) bool {
	return r.Family == other.Family && r.ResourceID == other.ResourceID
}

// UserID is the numeric resource id, 0 for routes without one.
func (r Route) UserID() int64 {
	n, err := strconv.ParseInt(r.ResourceID, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Endpoint is the backend listing that feeds the route.
func (r Route) Endpoint() string {
	switch r.Family {
	case Feed:
		return "/api/v1/post/"
	case Following:
		return "/api/v1/user/" + r.ResourceID + "/following-posts"
	case Profile:
		return "/api/v1/user/" + r.ResourceID + "/posts"
	case FollowUsers:
		return "/api/v1/user/" + r.ResourceID + "/follow-user/"
	case FollowerUsers:
		return "/api/v1/user/" + r.ResourceID + "/follower-user/"
	}
	return ""
}

// ListScope is the refresh scope of the route's listing.
func (r Route) ListScope() (refresh.Scope, bool) {
	switch r.Family {
	case Feed:
		return refresh.GlobalFeed, true
	case Following:
		return refresh.FollowingFeed(r.ResourceID), true
	case Profile:
		return refresh.ProfilePosts(r.ResourceID), true
	case FollowUsers:
		return refresh.FollowUsers(r.ResourceID), true
	case FollowerUsers:
		return refresh.FollowerUsers(r.ResourceID), true
	}
	return "", false
}

// InfoScope is the refresh scope of the user header shown above the listing.
func (r Route) InfoScope() (refresh.Scope, bool) {
	switch r.Family {
	case Profile, FollowUsers, FollowerUsers:
		return refresh.ProfileInfo(r.ResourceID), true
	}
	return "", false
}

func (r Route) Title() string {
	switch r.Family {
	case Feed:
		return "All Posts"
	case Following:
		return "Following"
	case Profile:
		return "Profile"
	case FollowUsers:
		return "Follow Users"
	case FollowerUsers:
		return "Follower Users"
	}
	return "Not Found"
}

// WebURL is the browser address of the route on the web client.
func WebURL(baseURL string, r Route) string {
	return strings.TrimRight(baseURL, "/") + "/#" + strings.TrimPrefix(r.Path(), "/")
}
