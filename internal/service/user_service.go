// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"wander/internal/auth"
	"wander/internal/mail"
	"wander/internal/middleware"
	"wander/internal/models"
	"wander/internal/repository"
	"wander/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles accounts: signup, login, verification, password reset,
// profiles and the follow relation.
type UserService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	sessions *auth.SessionManager
	mailer   mail.Mailer
}

// NewUserService wires a UserService.
func NewUserService(users repository.UserRepository, posts repository.PostRepository, sessions *auth.SessionManager, mailer mail.Mailer) *UserService {
	return &UserService{users: users, posts: posts, sessions: sessions, mailer: mailer}
}

type SignupInput struct {
	Username    string     `json:"username" validate:"required,min=3,max=30"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=6,max=72"`
	Gender      string     `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	UserID      uint
	Username    string     `json:"username" validate:"omitempty,min=3,max=30"`
	Bio         string     `json:"bio" validate:"omitempty,max=500"`
	Avatar      string     `json:"avatar" validate:"omitempty,url"`
	CoverImage  string     `json:"cover_image" validate:"omitempty,url"`
	Gender      string     `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// Signup creates an unverified account and dispatches the verification mail.
// Duplicate username or email surfaces as a BadRequest with a field map.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}

	// Friendly pre-check; the unique index still backstops concurrent signups.
	existing, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewFieldErrors("User already exists", map[string]string{
			"username": "Username is already taken",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternal(err)
	}

	user := &models.User{
		Username:    strings.TrimSpace(in.Username),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Password:    string(hash),
		Avatar:      models.DefaultAvatarURL,
		Gender:      models.Gender(in.Gender),
		DateOfBirth: in.DateOfBirth,
		Role:        models.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.dispatchVerification(ctx, user)

	return user, nil
}

// dispatchVerification issues a one-time token and mails the activation
// link. Mail trouble is logged, not surfaced: the account exists either way
// and the user can ask for a resend.
func (s *UserService) dispatchVerification(ctx context.Context, user *models.User) {
	token, err := s.sessions.IssueOneTime(ctx, repository.PurposeVerifyEmail, user.ID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "issuing verification token failed", slog.String("error", err.Error()))
		return
	}
	if err := s.mailer.SendVerificationMail(ctx, user.Email, user.Username, user.ID, token); err != nil {
		middleware.Logger.WarnContext(ctx, "sending verification mail failed", slog.String("error", err.Error()))
	}
}

// Login authenticates by email and password. Unknown email and wrong
// password are indistinguishable; an unverified account is told so.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, *auth.Pair, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, models.NewForbidden("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, nil, models.NewForbidden("Invalid email or password")
	}

	if !user.IsVerified {
		return nil, nil, models.NewForbidden("User is not verified")
	}

	pair, err := s.sessions.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// VerifyEmail consumes the mailed one-time token and marks the account
// verified. The token works exactly once.
func (s *UserService) VerifyEmail(ctx context.Context, userID uint, token string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, models.NewBadRequest("User is already verified")
	}

	if err := s.sessions.ConsumeOneTime(ctx, repository.PurposeVerifyEmail, userID, token); err != nil {
		return nil, err
	}

	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendVerification mails a fresh activation link; the previously mailed
// token stays valid until its TTL since issuing returns the live token.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFound("user")
	}
	if user.IsVerified {
		return models.NewBadRequest("User is already verified")
	}

	token, err := s.sessions.IssueOneTime(ctx, repository.PurposeVerifyEmail, user.ID)
	if err != nil {
		return err
	}
	if err := s.mailer.SendVerificationMail(ctx, user.Email, user.Username, user.ID, token); err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// ForgotPassword mails a reset link. An unknown email succeeds silently so
// the endpoint cannot be used to probe which addresses have accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		middleware.Logger.InfoContext(ctx, "password reset requested for unknown email")
		return nil
	}

	token, err := s.sessions.IssueOneTime(ctx, repository.PurposePasswordReset, user.ID)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordResetMail(ctx, user.Email, user.Username, user.ID, token); err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// ResetPassword consumes the mailed reset token, stores the new password and
// revokes every outstanding refresh token.
func (s *UserService) ResetPassword(ctx context.Context, userID uint, token, newPassword string) error {
	if len(newPassword) < 6 || len(newPassword) > 72 {
		return models.NewFieldErrors("Validation failed", map[string]string{
			"password": "must be between 6 and 72 characters",
		})
	}

	if err := s.sessions.ConsumeOneTime(ctx, repository.PurposePasswordReset, userID, token); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternal(err)
	}
	user.Password = string(hash)

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	// A stolen refresh token must not outlive the reset.
	return s.sessions.RevokeAll(ctx, userID)
}

// RevokeSessions invalidates every refresh token the user holds.
func (s *UserService) RevokeSessions(ctx context.Context, userID uint) error {
	return s.sessions.RevokeAll(ctx, userID)
}

// GetUser returns the user with follower/following edges loaded.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetUserPosts lists a user's posts, newest first.
func (s *UserService) GetUserPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.posts.GetByUserID(ctx, userID, limit, offset)
}

// Follow makes follower follow followee.
func (s *UserService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewBadRequest("You cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}
	return s.users.Follow(ctx, followerID, followeeID)
}

// Unfollow removes the follow edge.
func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewBadRequest("You cannot unfollow yourself")
	}
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}
	return s.users.Unfollow(ctx, followerID, followeeID)
}

// IsFollowing reports whether follower currently follows followee.
func (s *UserService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.users.IsFollowing(ctx, followerID, followeeID)
}

// UpdateProfile applies the provided (non-empty) profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		user.Username = strings.TrimSpace(in.Username)
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	if in.CoverImage != "" {
		user.CoverImage = in.CoverImage
	}
	if in.Gender != "" {
		user.Gender = models.Gender(in.Gender)
	}
	if in.DateOfBirth != nil {
		user.DateOfBirth = in.DateOfBirth
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount hard-deletes the account and its follow edges.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.users.Delete(ctx, userID)
}
