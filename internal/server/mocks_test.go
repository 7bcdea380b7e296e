package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"wander/internal/auth"
	"wander/internal/config"
	"wander/internal/models"
	"wander/internal/repository"
	"wander/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) BumpTokenVersion(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *MockUserRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *MockUserRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

// MockPostRepository is a mock of the PostRepository interface.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Like(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockPostRepository) Unlike(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface.
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	args := m.Called(ctx, postID, limit, offset)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) LikeComment(ctx context.Context, userID, commentID uint) error {
	args := m.Called(ctx, userID, commentID)
	return args.Error(0)
}

func (m *MockCommentRepository) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	args := m.Called(ctx, userID, commentID)
	return args.Error(0)
}

func (m *MockCommentRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	args := m.Called(ctx, reply)
	return args.Error(0)
}

func (m *MockCommentRepository) GetReplyByID(ctx context.Context, id uint) (*models.Reply, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reply), args.Error(1)
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]models.Reply, error) {
	args := m.Called(ctx, commentID, limit, offset)
	return args.Get(0).([]models.Reply), args.Error(1)
}

func (m *MockCommentRepository) DeleteReply(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) LikeReply(ctx context.Context, userID, replyID uint) error {
	args := m.Called(ctx, userID, replyID)
	return args.Error(0)
}

func (m *MockCommentRepository) UnlikeReply(ctx context.Context, userID, replyID uint) error {
	args := m.Called(ctx, userID, replyID)
	return args.Error(0)
}

// stubTokenStore is a deterministic OneTimeTokenStore for handler tests.
type stubTokenStore struct {
	token      string
	consumeErr error
}

func (s *stubTokenStore) Issue(context.Context, repository.TokenPurpose, uint) (string, error) {
	return s.token, nil
}

func (s *stubTokenStore) Consume(context.Context, repository.TokenPurpose, uint, string) error {
	return s.consumeErr
}

// stubMailer drops mail on the floor.
type stubMailer struct{}

func (stubMailer) SendVerificationMail(context.Context, string, string, uint, string) error {
	return nil
}
func (stubMailer) SendPasswordResetMail(context.Context, string, string, uint, string) error {
	return nil
}

// stubGeocoder resolves every address to a fixed point.
type stubGeocoder struct {
	loc *models.Location
	err error
}

func (s *stubGeocoder) Resolve(context.Context, string) (*models.Location, error) {
	return s.loc, s.err
}

// stubUploader returns a fixed URL.
type stubUploader struct {
	url string
	err error
}

func (s *stubUploader) Upload(context.Context, string) (string, error) {
	return s.url, s.err
}

func testServerConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		Port:               "4000",
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    168 * time.Hour,
	}
}

// testServer builds a Server over the given mocks with a stub mailer,
// geocoder and uploader.
func testServer(users *MockUserRepository, posts *MockPostRepository, comments *MockCommentRepository) *Server {
	cfg := testServerConfig()
	tokens := &stubTokenStore{token: "one-time-token"}
	sessions := auth.NewSessionManager(cfg, users, tokens)

	s := &Server{
		config:      cfg,
		userRepo:    users,
		postRepo:    posts,
		commentRepo: comments,
		sessions:    sessions,
		uploader:    &stubUploader{url: "https://img.example.com/x.png"},
	}
	s.userService = service.NewUserService(users, posts, sessions, stubMailer{})
	s.postService = service.NewPostService(posts, &stubGeocoder{loc: &models.Location{Lat: 1, Lng: 2}})
	s.commentService = service.NewCommentService(comments, posts)
	return s
}

// serviceWithSessions rebuilds a UserService around a replacement session
// manager.
func serviceWithSessions(users *MockUserRepository, sessions *auth.SessionManager) *service.UserService {
	return service.NewUserService(users, new(MockPostRepository), sessions, stubMailer{})
}

// asUser injects a fixed authenticated user, standing in for the auth
// middleware.
func asUser(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		return c.Next()
	}
}

// decodeEnvelope parses a response body into the uniform envelope.
func decodeEnvelope(t *testing.T, resp *http.Response) models.Envelope {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env models.Envelope
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return env
}
