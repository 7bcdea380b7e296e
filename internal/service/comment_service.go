package service

import (
	"context"

	"wander/internal/models"
	"wander/internal/repository"
	"wander/internal/validation"
)

// CommentService handles comments, replies and their strict like/unlike
// semantics.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

// NewCommentService wires a CommentService.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

type CreateCommentInput struct {
	PostID  uint
	UserID  uint
	Content string `json:"content" validate:"required,max=255"`
}

type CreateReplyInput struct {
	CommentID uint
	UserID    uint
	Content   string `json:"content" validate:"required,max=255"`
}

// CreateComment attaches a comment to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		UserID:  in.UserID,
		Content: in.Content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a post's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}

// DeleteComment removes a comment together with its replies. Author only.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbidden("You are not allowed to do that")
	}
	return s.comments.DeleteComment(ctx, commentID)
}

// LikeComment records the like; a second like is a BadRequest.
func (s *CommentService) LikeComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.comments.GetCommentByID(ctx, commentID); err != nil {
		return err
	}
	return s.comments.LikeComment(ctx, userID, commentID)
}

// UnlikeComment removes the like; unliking without a like is a BadRequest.
func (s *CommentService) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.comments.GetCommentByID(ctx, commentID); err != nil {
		return err
	}
	return s.comments.UnlikeComment(ctx, userID, commentID)
}

// CreateReply attaches a reply to an existing comment.
func (s *CommentService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.comments.GetCommentByID(ctx, in.CommentID); err != nil {
		return nil, err
	}

	reply := &models.Reply{
		CommentID: in.CommentID,
		UserID:    in.UserID,
		Content:   in.Content,
	}
	if err := s.comments.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// ListReplies returns a comment's replies, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]models.Reply, error) {
	if _, err := s.comments.GetCommentByID(ctx, commentID); err != nil {
		return nil, err
	}
	return s.comments.ListReplies(ctx, commentID, limit, offset)
}

// DeleteReply removes a reply. Author only.
func (s *CommentService) DeleteReply(ctx context.Context, replyID, userID uint) error {
	reply, err := s.comments.GetReplyByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.UserID != userID {
		return models.NewForbidden("You are not allowed to do that")
	}
	return s.comments.DeleteReply(ctx, replyID)
}

// LikeReply records the like; a second like is a BadRequest.
func (s *CommentService) LikeReply(ctx context.Context, userID, replyID uint) error {
	if _, err := s.comments.GetReplyByID(ctx, replyID); err != nil {
		return err
	}
	return s.comments.LikeReply(ctx, userID, replyID)
}

// UnlikeReply removes the like; unliking without a like is a BadRequest.
func (s *CommentService) UnlikeReply(ctx context.Context, userID, replyID uint) error {
	if _, err := s.comments.GetReplyByID(ctx, replyID); err != nil {
		return err
	}
	return s.comments.UnlikeReply(ctx, userID, replyID)
}
