package service

import (
	"context"
	"testing"
	"time"

	"wander/internal/auth"
	"wander/internal/config"
	"wander/internal/models"
	"wander/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared func-field stubs for the repositories and outbound adapters; each
// test overrides just the calls it cares about.

type userRepoStub struct {
	getByIDFn          func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*models.User, error)
	createFn           func(ctx context.Context, user *models.User) error
	updateFn           func(ctx context.Context, user *models.User) error
	deleteFn           func(ctx context.Context, id uint) error
	bumpTokenVersionFn func(ctx context.Context, id uint) error
	followFn           func(ctx context.Context, followerID, followeeID uint) error
	unfollowFn         func(ctx context.Context, followerID, followeeID uint) error
	isFollowingFn      func(ctx context.Context, followerID, followeeID uint) (bool, error)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:          func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:       func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:           func(context.Context, *models.User) error { return nil },
		updateFn:           func(context.Context, *models.User) error { return nil },
		deleteFn:           func(context.Context, uint) error { return nil },
		bumpTokenVersionFn: func(context.Context, uint) error { return nil },
		followFn:           func(context.Context, uint, uint) error { return nil },
		unfollowFn:         func(context.Context, uint, uint) error { return nil },
		isFollowingFn:      func(context.Context, uint, uint) (bool, error) { return false, nil },
	}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) BumpTokenVersion(ctx context.Context, id uint) error {
	return s.bumpTokenVersionFn(ctx, id)
}
func (s *userRepoStub) Follow(ctx context.Context, followerID, followeeID uint) error {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *userRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *userRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}

type postRepoStub struct {
	createFn      func(ctx context.Context, post *models.Post) error
	getByIDFn     func(ctx context.Context, id uint) (*models.Post, error)
	listFn        func(ctx context.Context, limit, offset int) ([]models.Post, error)
	getByUserIDFn func(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	updateFn      func(ctx context.Context, post *models.Post) error
	deleteFn      func(ctx context.Context, id uint) error
	likeFn        func(ctx context.Context, userID, postID uint) error
	unlikeFn      func(ctx context.Context, userID, postID uint) error
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:    func(context.Context, int, int) ([]models.Post, error) { return nil, nil },
		getByUserIDFn: func(context.Context, uint, int, int) ([]models.Post, error) {
			return nil, nil
		},
		updateFn: func(context.Context, *models.Post) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
		likeFn:   func(context.Context, uint, uint) error { return nil },
		unlikeFn: func(context.Context, uint, uint) error { return nil },
	}
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

type commentRepoStub struct {
	createCommentFn func(ctx context.Context, comment *models.Comment) error
	getCommentFn    func(ctx context.Context, id uint) (*models.Comment, error)
	listByPostFn    func(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error)
	deleteCommentFn func(ctx context.Context, id uint) error
	likeCommentFn   func(ctx context.Context, userID, commentID uint) error
	unlikeCommentFn func(ctx context.Context, userID, commentID uint) error
	createReplyFn   func(ctx context.Context, reply *models.Reply) error
	getReplyFn      func(ctx context.Context, id uint) (*models.Reply, error)
	listRepliesFn   func(ctx context.Context, commentID uint, limit, offset int) ([]models.Reply, error)
	deleteReplyFn   func(ctx context.Context, id uint) error
	likeReplyFn     func(ctx context.Context, userID, replyID uint) error
	unlikeReplyFn   func(ctx context.Context, userID, replyID uint) error
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createCommentFn: func(context.Context, *models.Comment) error { return nil },
		getCommentFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn: func(context.Context, uint, int, int) ([]models.Comment, error) {
			return nil, nil
		},
		deleteCommentFn: func(context.Context, uint) error { return nil },
		likeCommentFn:   func(context.Context, uint, uint) error { return nil },
		unlikeCommentFn: func(context.Context, uint, uint) error { return nil },
		createReplyFn:   func(context.Context, *models.Reply) error { return nil },
		getReplyFn: func(_ context.Context, id uint) (*models.Reply, error) {
			return &models.Reply{ID: id}, nil
		},
		listRepliesFn: func(context.Context, uint, int, int) ([]models.Reply, error) {
			return nil, nil
		},
		deleteReplyFn: func(context.Context, uint) error { return nil },
		likeReplyFn:   func(context.Context, uint, uint) error { return nil },
		unlikeReplyFn: func(context.Context, uint, uint) error { return nil },
	}
}

func (s *commentRepoStub) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.createCommentFn(ctx, comment)
}
func (s *commentRepoStub) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getCommentFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) DeleteComment(ctx context.Context, id uint) error {
	return s.deleteCommentFn(ctx, id)
}
func (s *commentRepoStub) LikeComment(ctx context.Context, userID, commentID uint) error {
	return s.likeCommentFn(ctx, userID, commentID)
}
func (s *commentRepoStub) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	return s.unlikeCommentFn(ctx, userID, commentID)
}
func (s *commentRepoStub) CreateReply(ctx context.Context, reply *models.Reply) error {
	return s.createReplyFn(ctx, reply)
}
func (s *commentRepoStub) GetReplyByID(ctx context.Context, id uint) (*models.Reply, error) {
	return s.getReplyFn(ctx, id)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]models.Reply, error) {
	return s.listRepliesFn(ctx, commentID, limit, offset)
}
func (s *commentRepoStub) DeleteReply(ctx context.Context, id uint) error {
	return s.deleteReplyFn(ctx, id)
}
func (s *commentRepoStub) LikeReply(ctx context.Context, userID, replyID uint) error {
	return s.likeReplyFn(ctx, userID, replyID)
}
func (s *commentRepoStub) UnlikeReply(ctx context.Context, userID, replyID uint) error {
	return s.unlikeReplyFn(ctx, userID, replyID)
}

type tokenStoreStub struct {
	issueFn   func(ctx context.Context, purpose repository.TokenPurpose, userID uint) (string, error)
	consumeFn func(ctx context.Context, purpose repository.TokenPurpose, userID uint, raw string) error
}

func noopTokenStore() *tokenStoreStub {
	return &tokenStoreStub{
		issueFn: func(context.Context, repository.TokenPurpose, uint) (string, error) {
			return "one-time-token", nil
		},
		consumeFn: func(context.Context, repository.TokenPurpose, uint, string) error { return nil },
	}
}

func (s *tokenStoreStub) Issue(ctx context.Context, purpose repository.TokenPurpose, userID uint) (string, error) {
	return s.issueFn(ctx, purpose, userID)
}
func (s *tokenStoreStub) Consume(ctx context.Context, purpose repository.TokenPurpose, userID uint, raw string) error {
	return s.consumeFn(ctx, purpose, userID, raw)
}

type mailerStub struct {
	verificationFn func(ctx context.Context, email, username string, userID uint, token string) error
	resetFn        func(ctx context.Context, email, username string, userID uint, token string) error
}

func noopMailer() *mailerStub {
	return &mailerStub{
		verificationFn: func(context.Context, string, string, uint, string) error { return nil },
		resetFn:        func(context.Context, string, string, uint, string) error { return nil },
	}
}

func (s *mailerStub) SendVerificationMail(ctx context.Context, email, username string, userID uint, token string) error {
	return s.verificationFn(ctx, email, username, userID, token)
}
func (s *mailerStub) SendPasswordResetMail(ctx context.Context, email, username string, userID uint, token string) error {
	return s.resetFn(ctx, email, username, userID, token)
}

type geocoderStub struct {
	resolveFn func(ctx context.Context, address string) (*models.Location, error)
}

func (s *geocoderStub) Resolve(ctx context.Context, address string) (*models.Location, error) {
	return s.resolveFn(ctx, address)
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    168 * time.Hour,
	}
}

func newSessions(users repository.UserRepository, tokens repository.OneTimeTokenStore) *auth.SessionManager {
	return auth.NewSessionManager(testConfig(), users, tokens)
}

// assertKind fails unless err is an AppError of the wanted kind.
func assertKind(t *testing.T, err error, kind models.ErrorKind) *models.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := models.AsAppError(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	return appErr
}
