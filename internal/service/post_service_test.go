package service

import (
	"context"
	"testing"

	"wander/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticGeocoder(lat, lng float64) *geocoderStub {
	return &geocoderStub{resolveFn: func(context.Context, string) (*models.Location, error) {
		return &models.Location{Lat: lat, Lng: lng}, nil
	}}
}

func failingGeocoder() *geocoderStub {
	return &geocoderStub{resolveFn: func(context.Context, string) (*models.Location, error) {
		return nil, models.NewUnprocessable("Could not find location for the specified address.")
	}}
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("geocodes the address", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		var created *models.Post
		repo.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 5
			created = p
			return nil
		}
		svc := NewPostService(repo, staticGeocoder(48.85, 2.35))
		post, err := svc.CreatePost(context.Background(), CreatePostInput{
			CreatorID:   2,
			Description: "Paris trip",
			Address:     "Paris, France",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		require.NotNil(t, post.Location)
		assert.Equal(t, 48.85, post.Location.Lat)
		assert.Equal(t, 2.35, post.Location.Lng)
	})

	t.Run("skips geocoding without an address", func(t *testing.T) {
		t.Parallel()
		geo := &geocoderStub{resolveFn: func(context.Context, string) (*models.Location, error) {
			t.Fatal("geocoder must not be called without an address")
			return nil, nil
		}}
		svc := NewPostService(noopPostRepo(), geo)
		post, err := svc.CreatePost(context.Background(), CreatePostInput{CreatorID: 2, Description: "no place"})
		require.NoError(t, err)
		assert.Nil(t, post.Location)
	})

	t.Run("unresolvable address fails the create", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.createFn = func(context.Context, *models.Post) error {
			t.Fatal("post must not be created when geocoding fails")
			return nil
		}
		svc := NewPostService(repo, failingGeocoder())
		_, err := svc.CreatePost(context.Background(), CreatePostInput{
			CreatorID: 2, Description: "x", Address: "garbage",
		})
		appErr := assertKind(t, err, models.KindUnprocessable)
		assert.Equal(t, "Could not find location for the specified address.", appErr.Message)
	})

	t.Run("description is required", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), staticGeocoder(0, 0))
		_, err := svc.CreatePost(context.Background(), CreatePostInput{CreatorID: 2})
		appErr := assertKind(t, err, models.KindBadRequest)
		assert.Contains(t, appErr.Fields, "description")
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	owned := func(id uint) *models.Post {
		return &models.Post{
			ID: id, CreatorID: 2, Description: "d", Address: "Old Town",
			Location: &models.Location{Lat: 1.0, Lng: 2.0},
		}
	}

	t.Run("non-owner is Forbidden", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) { return owned(id), nil }
		svc := NewPostService(repo, staticGeocoder(0, 0))
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 1, UserID: 99})
		appErr := assertKind(t, err, models.KindForbidden)
		assert.Equal(t, "You are not allowed to do that", appErr.Message)
	})

	t.Run("unchanged address is not re-geocoded", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) { return owned(id), nil }
		geo := &geocoderStub{resolveFn: func(context.Context, string) (*models.Location, error) {
			t.Fatal("geocoder must not run for an unchanged address")
			return nil, nil
		}}
		svc := NewPostService(repo, geo)
		addr := "Old Town"
		desc := "new description"
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			PostID: 1, UserID: 2, Description: &desc, Address: &addr,
		})
		require.NoError(t, err)
		assert.Equal(t, "new description", post.Description)
		require.NotNil(t, post.Location)
		assert.Equal(t, 1.0, post.Location.Lat)
	})

	t.Run("changed address is re-geocoded", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) { return owned(id), nil }
		svc := NewPostService(repo, staticGeocoder(52.52, 13.40))
		addr := "Berlin"
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 1, UserID: 2, Address: &addr})
		require.NoError(t, err)
		assert.Equal(t, "Berlin", post.Address)
		require.NotNil(t, post.Location)
		assert.Equal(t, 52.52, post.Location.Lat)
		assert.Equal(t, 13.40, post.Location.Lng)
	})

	t.Run("clearing the address clears the coordinates", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) { return owned(id), nil }
		svc := NewPostService(repo, failingGeocoder())
		empty := ""
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 1, UserID: 2, Address: &empty})
		require.NoError(t, err)
		assert.Empty(t, post.Address)
		assert.Nil(t, post.Location)
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) { return owned(id), nil }
		svc := NewPostService(repo, staticGeocoder(0, 0))
		empty := ""
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 1, UserID: 2, Description: &empty})
		assertKind(t, err, models.KindBadRequest)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("owner deletes", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, CreatorID: 2}, nil
		}
		var deleted uint
		repo.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		svc := NewPostService(repo, staticGeocoder(0, 0))
		require.NoError(t, svc.DeletePost(context.Background(), 7, 2))
		assert.Equal(t, uint(7), deleted)
	})

	t.Run("non-owner is Forbidden", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, CreatorID: 2}, nil
		}
		repo.deleteFn = func(context.Context, uint) error {
			t.Fatal("delete must not run for non-owner")
			return nil
		}
		svc := NewPostService(repo, staticGeocoder(0, 0))
		assertKind(t, svc.DeletePost(context.Background(), 7, 99), models.KindForbidden)
	})

	t.Run("missing post is NotFound", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, uint) (*models.Post, error) {
			return nil, models.NewNotFound("post")
		}
		svc := NewPostService(repo, staticGeocoder(0, 0))
		assertKind(t, svc.DeletePost(context.Background(), 7, 2), models.KindNotFound)
	})
}

func TestPostService_LikeUnlike(t *testing.T) {
	t.Parallel()

	t.Run("double like is a BadRequest", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		liked := false
		repo.likeFn = func(context.Context, uint, uint) error {
			if liked {
				return models.NewBadRequest("You have already liked this post")
			}
			liked = true
			return nil
		}
		svc := NewPostService(repo, staticGeocoder(0, 0))
		require.NoError(t, svc.LikePost(context.Background(), 1, 7))
		err := svc.LikePost(context.Background(), 1, 7)
		appErr := assertKind(t, err, models.KindBadRequest)
		assert.Equal(t, "You have already liked this post", appErr.Message)
	})

	t.Run("unlike without a like is a BadRequest", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.unlikeFn = func(context.Context, uint, uint) error {
			return models.NewBadRequest("You have not liked this post")
		}
		svc := NewPostService(repo, staticGeocoder(0, 0))
		assertKind(t, svc.UnlikePost(context.Background(), 1, 7), models.KindBadRequest)
	})

	t.Run("liking a missing post is NotFound", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, uint) (*models.Post, error) {
			return nil, models.NewNotFound("post")
		}
		svc := NewPostService(repo, staticGeocoder(0, 0))
		assertKind(t, svc.LikePost(context.Background(), 1, 404), models.KindNotFound)
	})
}
