package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glabrego/network-cli/internal/network"
	"github.com/glabrego/network-cli/internal/session"
	"github.com/glabrego/network-cli/internal/storage"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrNotOwner      = errors.New("only the author can edit this post")
	ErrCannotFollow  = errors.New("cannot follow this user")
)

type NetworkClient interface {
	ListPosts(ctx context.Context, endpoint, pageToken string) (network.PostPage, error)
	ListUsers(ctx context.Context, endpoint string) ([]network.User, error)
	CreatePost(ctx context.Context, text string) error
	UpdatePost(ctx context.Context, postID int64, text string) (network.Post, error)
	Like(ctx context.Context, postID int64) (int, error)
	Unlike(ctx context.Context, postID int64) (int, error)
	ListLikeUsers(ctx context.Context, postID int64) ([]network.User, error)
	GetUser(ctx context.Context, userID int64) (network.User, error)
	CheckFollow(ctx context.Context, userID int64) (bool, error)
	Follow(ctx context.Context, userID int64) (network.User, error)
	Unfollow(ctx context.Context, userID int64) (network.User, error)
}

type Repository interface {
	LoadPreferences(ctx context.Context) (storage.Preferences, error)
	SavePreferences(ctx context.Context, prefs storage.Preferences) error
	LoadLastPath(ctx context.Context) (string, error)
	SaveLastPath(ctx context.Context, path string) error
}

type UIPreferences struct {
	Compact     bool
	ShowNumbers bool
}

type Service struct {
	client  NetworkClient
	repo    Repository
	session session.Session
	log     *zap.Logger
}

func NewService(client NetworkClient, repo Repository, sess session.Session, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, repo: repo, session: sess, log: logger}
}

func (s *Service) Session() session.Session {
	return s.session
}

func (s *Service) FetchPosts(ctx context.Context, endpoint, pageToken string) (network.PostPage, error) {
	page, err := s.client.ListPosts(ctx, endpoint, pageToken)
	if err != nil {
		s.log.Debug("fetch posts failed",
			zap.String("endpoint", endpoint),
			zap.String("page", pageToken),
			zap.Error(err))
		return network.PostPage{}, fmt.Errorf("fetch posts: %w", err)
	}
	return page, nil
}

func (s *Service) ListUsers(ctx context.Context, endpoint string) ([]network.User, error) {
	users, err := s.client.ListUsers(ctx, endpoint)
	if err != nil {
		s.log.Debug("fetch users failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return users, nil
}

// LoadProfile fetches a user and, when the session may follow them, whether
// it already does. Both requests run concurrently.
func (s *Service) LoadProfile(ctx context.Context, userID int64) (network.Profile, error) {
	var profile network.Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := s.client.GetUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch user %d: %w", userID, err)
		}
		profile.User = user
		return nil
	})
	if s.session.CanFollow(userID) {
		g.Go(func() error {
			following, err := s.client.CheckFollow(gctx, userID)
			if err != nil {
				return fmt.Errorf("check follow %d: %w", userID, err)
			}
			profile.Following = following
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Debug("load profile failed", zap.Int64("user_id", userID), zap.Error(err))
		return network.Profile{}, err
	}
	return profile, nil
}

func (s *Service) CreatePost(ctx context.Context, text string) error {
	if !s.session.CanMutate() {
		return ErrLoginRequired
	}
	if err := network.ValidatePostText(text); err != nil {
		return err
	}
	if err := s.client.CreatePost(ctx, text); err != nil {
		s.log.Warn("create post failed", zap.Error(err))
		return fmt.Errorf("create post: %w", err)
	}
	s.log.Info("post created", zap.Int("length", len([]rune(text))))
	return nil
}

func (s *Service) UpdatePost(ctx context.Context, post network.Post, text string) (network.Post, error) {
	if !s.session.Owns(post.CreatedBy.ID) {
		return network.Post{}, ErrNotOwner
	}
	if err := network.ValidatePostText(text); err != nil {
		return network.Post{}, err
	}
	updated, err := s.client.UpdatePost(ctx, post.ID, text)
	if err != nil {
		s.log.Warn("update post failed", zap.Int64("post_id", post.ID), zap.Error(err))
		return network.Post{}, fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return updated, nil
}

// SetLike likes or unlikes a post and returns the server's like count.
func (s *Service) SetLike(ctx context.Context, postID int64, liked bool) (int, error) {
	if !s.session.CanMutate() {
		return 0, ErrLoginRequired
	}
	call, verb := s.client.Unlike, "unlike"
	if liked {
		call, verb = s.client.Like, "like"
	}
	count, err := call(ctx, postID)
	if err != nil {
		s.log.Warn(verb+" failed", zap.Int64("post_id", postID), zap.Error(err))
		return 0, fmt.Errorf("%s post %d: %w", verb, postID, err)
	}
	return count, nil
}

// SetFollow follows or unfollows a user and returns the user with fresh counts.
func (s *Service) SetFollow(ctx context.Context, userID int64, follow bool) (network.User, error) {
	if !s.session.CanMutate() {
		return network.User{}, ErrLoginRequired
	}
	if !s.session.CanFollow(userID) {
		return network.User{}, ErrCannotFollow
	}
	call, verb := s.client.Unfollow, "unfollow"
	if follow {
		call, verb = s.client.Follow, "follow"
	}
	user, err := call(ctx, userID)
	if err != nil {
		s.log.Warn(verb+" failed", zap.Int64("user_id", userID), zap.Error(err))
		return network.User{}, fmt.Errorf("%s user %d: %w", verb, userID, err)
	}
	return user, nil
}

func (s *Service) ListLikeUsers(ctx context.Context, postID int64) ([]network.User, error) {
	users, err := s.client.ListLikeUsers(ctx, postID)
	if err != nil {
		s.log.Debug("fetch like users failed", zap.Int64("post_id", postID), zap.Error(err))
		return nil, fmt.Errorf("fetch like users: %w", err)
	}
	return users, nil
}

func (s *Service) LoadUIPreferences(ctx context.Context) (UIPreferences, error) {
	prefs, err := s.repo.LoadPreferences(ctx)
	if err != nil {
		return UIPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return UIPreferences{Compact: prefs.Compact, ShowNumbers: prefs.ShowNumbers}, nil
}

func (s *Service) SaveUIPreferences(ctx context.Context, prefs UIPreferences) error {
	if err := s.repo.SavePreferences(ctx, storage.Preferences{
		Compact:     prefs.Compact,
		ShowNumbers: prefs.ShowNumbers,
	}); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *Service) LastPath(ctx context.Context) (string, error) {
	path, err := s.repo.LoadLastPath(ctx)
	if err != nil {
		return "", fmt.Errorf("load last path: %w", err)
	}
	return path, nil
}

func (s *Service) SaveLastPath(ctx context.Context, path string) error {
	if err := s.repo.SaveLastPath(ctx, path); err != nil {
		return fmt.Errorf("save last path: %w", err)
	}
	return nil
}
