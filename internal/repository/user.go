package repository

import (
	"context"
	"errors"
	"strings"

	"wander/internal/cache"
	"wander/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and the follow
// relation.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	BumpTokenVersion(ctx context.Context, id uint) error

	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// loadFollowEdges fills the user's Followers and Following ID slices from the
// follows table.
func (r *userRepository) loadFollowEdges(ctx context.Context, user *models.User) error {
	user.Followers = []uint{}
	user.Following = []uint{}

	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", user.ID).
		Pluck("follower_id", &user.Followers).Error; err != nil {
		return models.NewInternal(err)
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", user.ID).
		Pluck("followee_id", &user.Following).Error; err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// userCacheRecord is the cache serialization of a user row. The User JSON
// tags are the API shape and hide Password and TokenVersion; the cache must
// keep both or a cache hit would hand back a row with an empty hash and a
// reset revocation counter.
type userCacheRecord struct {
	models.User
	Password     string `json:"password"`
	TokenVersion int    `json:"tokenVersion"`
}

func newUserCacheRecord(user *models.User) userCacheRecord {
	return userCacheRecord{
		User:         *user,
		Password:     user.Password,
		TokenVersion: user.TokenVersion,
	}
}

func (rec *userCacheRecord) user() *models.User {
	user := rec.User
	user.Password = rec.Password
	user.TokenVersion = rec.TokenVersion
	return &user
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var rec userCacheRecord
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &rec, cache.UserTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFound("user")
			}
			return models.NewInternal(err)
		}
		if err := r.loadFollowEdges(ctx, &user); err != nil {
			return err
		}
		rec = newUserCacheRecord(&user)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

// GetByEmail looks a user up by their (lowercased) email address. A missing
// user is (nil, nil), not an error: login must not reveal which lookups hit.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternal(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternal(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			fields := map[string]string{}
			msg := strings.ToLower(err.Error())
			if strings.Contains(msg, "username") {
				fields["username"] = "Username is already taken"
			}
			if strings.Contains(msg, "email") {
				fields["email"] = "Email is already in use"
			}
			if len(fields) == 0 {
				fields["username"] = "Username or email is already taken"
			}
			return models.NewFieldErrors("User already exists", fields)
		}
		return models.NewInternal(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewBadRequest("Username or email is already taken")
		}
		return models.NewInternal(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Delete hard-deletes the account together with its follow edges.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return models.NewInternal(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// BumpTokenVersion atomically increments the user's token version, cutting
// off every refresh token issued before the bump.
func (r *userRepository) BumpTokenVersion(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return models.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFound("user")
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// Follow inserts the directed edge follower -> followee. A duplicate edge is
// a BadRequest: the relation is strictly two-state.
func (r *userRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	edge := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewBadRequest("You are already following this user")
		}
		return models.NewInternal(err)
	}
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followeeID)
	return nil
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewBadRequest("You are not following this user")
	}
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followeeID)
	return nil
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternal(err)
	}
	return count > 0, nil
}
