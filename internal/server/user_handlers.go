package server

import (
	"wander/internal/middleware"
	"wander/internal/models"
	"wander/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id. An authenticated viewer also
// gets their follow state toward the profile.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}

	user, serr := s.userService.GetUser(c.UserContext(), id)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	payload := fiber.Map{"user": user}
	if viewerID, ok := middleware.CurrentUserID(c); ok && viewerID != id {
		following, ferr := s.userService.IsFollowing(c.UserContext(), viewerID, id)
		if ferr != nil {
			return models.RespondError(c, ferr)
		}
		payload["isFollowing"] = following
	}

	return models.Respond(c, fiber.StatusOK, "User found", payload)
}

// GetMyProfile handles GET /api/users/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "User found", fiber.Map{"user": user})
}

// UpdateMyProfile handles PUT /api/users/me.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var in service.UpdateProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Profile updated successfully", fiber.Map{"user": user})
}

// DeleteMyAccount handles DELETE /api/users/me.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.UserContext(), currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}

	c.Cookie(s.sessions.ClearRefreshCookie())
	return models.Respond(c, fiber.StatusOK, "Account deleted successfully", nil)
}

// FollowUser handles POST /api/users/:id/follow.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}

	if serr := s.userService.Follow(c.UserContext(), currentUserID(c), followeeID); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "User followed successfully", nil)
}

// UnfollowUser handles POST /api/users/:id/unfollow.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}

	if serr := s.userService.Unfollow(c.UserContext(), currentUserID(c), followeeID); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "User unfollowed successfully", nil)
}

// GetUserPosts handles GET /api/users/:id/posts.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 10)

	posts, serr := s.userService.GetUserPosts(c.UserContext(), id, p.Limit, p.Offset)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Posts found", fiber.Map{"posts": posts})
}
