package server

import (
	"wander/internal/models"
	"wander/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:pid/comments.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "pid", "post ID")
	if err != nil {
		return nil
	}

	var in service.CreateCommentInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.PostID = postID
	in.UserID = currentUserID(c)

	comment, serr := s.commentService.CreateComment(c.UserContext(), in)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusCreated, "Comment created successfully", fiber.Map{"comment": comment})
}

// GetComments handles GET /api/posts/:pid/comments.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "pid", "post ID")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 10)

	comments, serr := s.commentService.ListComments(c.UserContext(), postID, p.Limit, p.Offset)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Comments found", fiber.Map{"comments": comments})
}

// DeleteComment handles DELETE /api/posts/:pid/comments/:cid.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "cid", "comment ID")
	if err != nil {
		return nil
	}

	if serr := s.commentService.DeleteComment(c.UserContext(), commentID, currentUserID(c)); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Comment deleted successfully", nil)
}

// LikeComment handles POST /api/comments/:cid/like.
func (s *Server) LikeComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "cid", "comment ID")
	if err != nil {
		return nil
	}

	if serr := s.commentService.LikeComment(c.UserContext(), currentUserID(c), commentID); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Comment liked successfully", nil)
}

// UnlikeComment handles POST /api/comments/:cid/unlike.
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "cid", "comment ID")
	if err != nil {
		return nil
	}

	if serr := s.commentService.UnlikeComment(c.UserContext(), currentUserID(c), commentID); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Comment unliked successfully", nil)
}

// CreateReply handles POST /api/comments/:cid/replies.
func (s *Server) CreateReply(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "cid", "comment ID")
	if err != nil {
		return nil
	}

	var in service.CreateReplyInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.CommentID = commentID
	in.UserID = currentUserID(c)

	reply, serr := s.commentService.CreateReply(c.UserContext(), in)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusCreated, "Reply created successfully", fiber.Map{"reply": reply})
}

// GetReplies handles GET /api/comments/:cid/replies.
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "cid", "comment ID")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 10)

	replies, serr := s.commentService.ListReplies(c.UserContext(), commentID, p.Limit, p.Offset)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Replies found", fiber.Map{"replies": replies})
}

// DeleteReply handles DELETE /api/comments/:cid/replies/:rid.
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	replyID, err := s.parseID(c, "rid", "reply ID")
	if err != nil {
		return nil
	}

	if serr := s.commentService.DeleteReply(c.UserContext(), replyID, currentUserID(c)); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Reply deleted successfully", nil)
}

// LikeReply handles POST /api/comments/replies/:rid/like.
func (s *Server) LikeReply(c *fiber.Ctx) error {
	replyID, err := s.parseID(c, "rid", "reply ID")
	if err != nil {
		return nil
	}

	if serr := s.commentService.LikeReply(c.UserContext(), currentUserID(c), replyID); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Reply liked successfully", nil)
}

// UnlikeReply handles POST /api/comments/replies/:rid/unlike.
func (s *Server) UnlikeReply(c *fiber.Ctx) error {
	replyID, err := s.parseID(c, "rid", "reply ID")
	if err != nil {
		return nil
	}

	if serr := s.commentService.UnlikeReply(c.UserContext(), currentUserID(c), replyID); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Reply unliked successfully", nil)
}
