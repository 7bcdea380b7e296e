package service

import (
	"context"

	"wander/internal/geocode"
	"wander/internal/models"
	"wander/internal/repository"
	"wander/internal/validation"
)

// PostService handles posts: creation with geocoding, updates, deletes and
// the strict like/unlike state machine.
type PostService struct {
	posts    repository.PostRepository
	geocoder geocode.Resolver
}

// NewPostService wires a PostService.
func NewPostService(posts repository.PostRepository, geocoder geocode.Resolver) *PostService {
	return &PostService{posts: posts, geocoder: geocoder}
}

type CreatePostInput struct {
	CreatorID   uint
	Description string `json:"description" validate:"required"`
	ImageURL    string `json:"image" validate:"omitempty,url"`
	Address     string `json:"address" validate:"omitempty,max=255"`
}

// UpdatePostInput uses pointers so "field absent" and "field cleared" stay
// distinguishable.
type UpdatePostInput struct {
	PostID      uint
	UserID      uint
	Description *string `json:"description"`
	ImageURL    *string `json:"image"`
	Address     *string `json:"address"`
}

// CreatePost stores a new post. When an address is given it is geocoded
// first; an address the geocoder cannot place fails the whole create with an
// UnprocessableEntity.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Address:     in.Address,
		CreatorID:   in.CreatorID,
	}

	if in.Address != "" {
		loc, err := s.geocoder.Resolve(ctx, in.Address)
		if err != nil {
			return nil, err
		}
		post.Location = loc
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns one post with its likes.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// ListPosts returns the newest posts.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

// UpdatePost applies the provided fields. Only the creator may update, and
// the address is re-geocoded only when it actually changes.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != in.UserID {
		return nil, models.NewForbidden("You are not allowed to do that")
	}

	if in.Description != nil {
		if *in.Description == "" {
			return nil, models.NewFieldErrors("Validation failed", map[string]string{
				"description": "description is required",
			})
		}
		post.Description = *in.Description
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}
	if in.Address != nil && *in.Address != post.Address {
		post.Address = *in.Address
		if *in.Address == "" {
			post.Location = nil
		} else {
			loc, err := s.geocoder.Resolve(ctx, *in.Address)
			if err != nil {
				return nil, err
			}
			post.Location = loc
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post with everything hanging off it. Only the
// creator may delete.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != userID {
		return models.NewForbidden("You are not allowed to do that")
	}
	return s.posts.Delete(ctx, postID)
}

// LikePost records the like; liking an already-liked post is a BadRequest.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.posts.Like(ctx, userID, postID)
}

// UnlikePost removes the like; unliking a post that was never liked is a
// BadRequest.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.posts.Unlike(ctx, userID, postID)
}
