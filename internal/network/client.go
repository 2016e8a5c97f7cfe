package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

const (
	// CSRFCookieName holds the token echoed back in CSRFHeader on mutations.
	CSRFCookieName    = "networktoken"
	CSRFHeader        = "X-NETWORKTOKEN"
	SessionCookieName = "sessionid"

	MaxPostLength = 128
)

// User is the public summary of an account.
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	FollowCount   int    `json:"follow_count"`
	FollowerCount int    `json:"follower_count"`
}

// Post is the subset of post fields required by the app.
type Post struct {
	ID        int64   `json:"id"`
	Text      string  `json:"text"`
	CreatedBy User    `json:"created_by"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
	LikeCount int     `json:"like_count"`
	IsLiked   bool    `json:"is_liked"`
}

func (p Post) Edited() bool {
	return p.UpdatedAt != nil && *p.UpdatedAt != ""
}

// PostPage is one page of a paginated post listing. Next and Previous are
// absolute URLs supplied by the server, nil at either end of the listing.
type PostPage struct {
	Count    int     `json:"count"`
	Results  []Post  `json:"results"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

func (p PostPage) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

func (p PostPage) HasPrevious() bool {
	return p.Previous != nil && *p.Previous != ""
}

// Profile is a user together with whether the session follows them.
type Profile struct {
	User      User
	Following bool
}

type likeCount struct {
	Count int `json:"count"`
}

type checkFollow struct {
	CheckFollow bool `json:"check_follow"`
}

type postText struct {
	Text string `json:"text"`
}

// Credentials are the cookies a browser session would carry.
type Credentials struct {
	SessionID string
	CSRFToken string
}

type Client struct {
	baseURL string
	base    *url.URL
	http    *http.Client
}

func NewClient(baseURL string, creds Credentials, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	var hc http.Client
	if httpClient != nil {
		hc = *httpClient
	} else {
		hc = http.Client{Timeout: 10 * time.Second}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	var cookies []*http.Cookie
	if creds.SessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: SessionCookieName, Value: creds.SessionID, Path: "/"})
	}
	if creds.CSRFToken != "" {
		cookies = append(cookies, &http.Cookie{Name: CSRFCookieName, Value: creds.CSRFToken, Path: "/"})
	}
	if len(cookies) > 0 {
		hc.Jar.SetCookies(base, cookies)
	}

	return &Client{baseURL: baseURL, base: base, http: &hc}, nil
}

// BaseURL is the server root the client talks to, without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListPosts(ctx context.Context, endpoint, pageToken string) (PostPage, error) {
	path := endpoint
	if pageToken != "" {
		q := make(url.Values)
		q.Set("page", pageToken)
		path += "?" + q.Encode()
	}

	var page PostPage
	if _, err := c.send(ctx, http.MethodGet, path, nil, "list posts", &page); err != nil {
		return PostPage{}, err
	}
	return page, nil
}

func (c *Client) CreatePost(ctx context.Context, text string) error {
	if err := ValidatePostText(text); err != nil {
		return err
	}
	status, err := c.send(ctx, http.MethodPost, "/api/v1/post/", postText{Text: text}, "create post", nil)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return &ApplicationError{Op: "create post", Status: status, Detail: "post was not created"}
	}
	return nil
}

func (c *Client) UpdatePost(ctx context.Context, postID int64, text string) (Post, error) {
	if err := ValidatePostText(text); err != nil {
		return Post{}, err
	}
	var post Post
	path := "/api/v1/post/" + strconv.FormatInt(postID, 10) + "/"
	if _, err := c.send(ctx, http.MethodPut, path, postText{Text: text}, "update post", &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

func (c *Client) Like(ctx context.Context, postID int64) (int, error) {
	return c.setLike(ctx, postID, http.MethodPut, "like post")
}

func (c *Client) Unlike(ctx context.Context, postID int64) (int, error) {
	return c.setLike(ctx, postID, http.MethodDelete, "unlike post")
}

func (c *Client) setLike(ctx context.Context, postID int64, method, op string) (int, error) {
	var out likeCount
	path := "/api/v1/post/" + strconv.FormatInt(postID, 10) + "/like/"
	if _, err := c.send(ctx, method, path, nil, op, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) ListLikeUsers(ctx context.Context, postID int64) ([]User, error) {
	var users []User
	path := "/api/v1/post/" + strconv.FormatInt(postID, 10) + "/like-user/"
	if _, err := c.send(ctx, http.MethodGet, path, nil, "list like users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (User, error) {
	var user User
	if _, err := c.send(ctx, http.MethodGet, userPath(userID, ""), nil, "get user", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) CheckFollow(ctx context.Context, userID int64) (bool, error) {
	var out checkFollow
	path := "/api/v1/user/check-follow/" + strconv.FormatInt(userID, 10) + "/"
	if _, err := c.send(ctx, http.MethodGet, path, nil, "check follow", &out); err != nil {
		return false, err
	}
	return out.CheckFollow, nil
}

func (c *Client) Follow(ctx context.Context, userID int64) (User, error) {
	return c.setFollow(ctx, userID, http.MethodPut, "follow user")
}

func (c *Client) Unfollow(ctx context.Context, userID int64) (User, error) {
	return c.setFollow(ctx, userID, http.MethodDelete, "unfollow user")
}

func (c *Client) setFollow(ctx context.Context, userID int64, method, op string) (User, error) {
	var user User
	if _, err := c.send(ctx, method, userPath(userID, "follow/"), nil, op, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) ListFollowUsers(ctx context.Context, userID int64) ([]User, error) {
	return c.listUsers(ctx, userPath(userID, "follow-user/"), "follow users")
}

func (c *Client) ListFollowerUsers(ctx context.Context, userID int64) ([]User, error) {
	return c.listUsers(ctx, userPath(userID, "follower-user/"), "follower users")
}

// ListUsers fetches a non-paginated user listing by endpoint path.
func (c *Client) ListUsers(ctx context.Context, endpoint string) ([]User, error) {
	return c.listUsers(ctx, endpoint, "users")
}

func (c *Client) listUsers(ctx context.Context, path, resource string) ([]User, error) {
	var users []User
	if _, err := c.send(ctx, http.MethodGet, path, nil, "list "+resource, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func userPath(userID int64, suffix string) string {
	return "/api/v1/user/" + strconv.FormatInt(userID, 10) + "/" + suffix
}

// send performs one request and decodes a successful body into out. Any body
// carrying a detail message is an application error regardless of status.
func (c *Client) send(ctx context.Context, method, path string, payload any, op string, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encode %s payload: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, &ApplicationError{Op: op, Status: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if detail, ok := errorDetail(raw); ok {
		return resp.StatusCode, &ApplicationError{Op: op, Status: resp.StatusCode, Detail: detail}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &ApplicationError{Op: op, Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.StatusCode, nil
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  *struct {
		Detail json.RawMessage `json:"detail"`
	} `json:"error"`
}

func errorDetail(raw []byte) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var body errorBody
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return "", false
	}
	if len(body.Detail) > 0 {
		return detailText(body.Detail), true
	}
	if body.Error != nil && len(body.Error.Detail) > 0 {
		return detailText(body.Error.Detail), true
	}
	return "", false
}

func detailText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if method != http.MethodGet {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(CSRFHeader, token)
		}
	}
	return req, nil
}

func (c *Client) csrfToken() string {
	if c.http.Jar == nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("post text is empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxPostLength {
		return fmt.Errorf("post text is %d characters, limit is %d", n, MaxPostLength)
	}
	return nil
}
