package server

import (
	"wander/internal/models"
	"wander/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.CreatorID = currentUserID(c)

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, "Post created successfully", fiber.Map{"post": post})
}

// GetPosts handles GET /api/posts.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 10)

	posts, err := s.postService.ListPosts(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Posts found", fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:pid.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "pid", "post ID")
	if err != nil {
		return nil
	}

	post, serr := s.postService.GetPost(c.UserContext(), id)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Post found", fiber.Map{"post": post})
}

// UpdatePost handles PATCH /api/posts/:pid.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "pid", "post ID")
	if err != nil {
		return nil
	}

	var in service.UpdatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.PostID = id
	in.UserID = currentUserID(c)

	post, serr := s.postService.UpdatePost(c.UserContext(), in)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Post updated successfully", fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/posts/:pid.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "pid", "post ID")
	if err != nil {
		return nil
	}

	if serr := s.postService.DeletePost(c.UserContext(), id, currentUserID(c)); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Post deleted successfully", nil)
}

// LikePost handles POST /api/posts/:pid/like.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "pid", "post ID")
	if err != nil {
		return nil
	}

	if serr := s.postService.LikePost(c.UserContext(), currentUserID(c), id); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Post liked successfully", nil)
}

// UnlikePost handles POST /api/posts/:pid/unlike.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "pid", "post ID")
	if err != nil {
		return nil
	}

	if serr := s.postService.UnlikePost(c.UserContext(), currentUserID(c), id); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Post unliked successfully", nil)
}
