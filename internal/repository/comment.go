package repository

import (
	"context"
	"errors"

	"wander/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments, replies and
// their likes.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	LikeComment(ctx context.Context, userID, commentID uint) error
	UnlikeComment(ctx context.Context, userID, commentID uint) error

	CreateReply(ctx context.Context, reply *models.Reply) error
	GetReplyByID(ctx context.Context, id uint) (*models.Reply, error)
	ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]models.Reply, error)
	DeleteReply(ctx context.Context, id uint) error
	LikeReply(ctx context.Context, userID, replyID uint) error
	UnlikeReply(ctx context.Context, userID, replyID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) loadCommentLikes(ctx context.Context, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		c.Likes = []uint{}
		ids = append(ids, c.ID)
	}

	var rows []models.CommentLike
	if err := r.db.WithContext(ctx).
		Where("comment_id IN ?", ids).
		Find(&rows).Error; err != nil {
		return models.NewInternal(err)
	}

	byComment := make(map[uint][]uint, len(comments))
	for _, row := range rows {
		byComment[row.CommentID] = append(byComment[row.CommentID], row.UserID)
	}
	for _, c := range comments {
		if likes, ok := byComment[c.ID]; ok {
			c.Likes = likes
		}
		c.LikesCount = len(c.Likes)
	}
	return nil
}

func (r *commentRepository) loadReplyLikes(ctx context.Context, replies []*models.Reply) error {
	if len(replies) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(replies))
	for _, rep := range replies {
		rep.Likes = []uint{}
		ids = append(ids, rep.ID)
	}

	var rows []models.ReplyLike
	if err := r.db.WithContext(ctx).
		Where("reply_id IN ?", ids).
		Find(&rows).Error; err != nil {
		return models.NewInternal(err)
	}

	byReply := make(map[uint][]uint, len(replies))
	for _, row := range rows {
		byReply[row.ReplyID] = append(byReply[row.ReplyID], row.UserID)
	}
	for _, rep := range replies {
		if likes, ok := byReply[rep.ID]; ok {
			rep.Likes = likes
		}
		rep.LikesCount = len(rep.Likes)
	}
	return nil
}

func (r *commentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternal(err)
	}
	comment.Likes = []uint{}
	return nil
}

func (r *commentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("comment")
		}
		return nil, models.NewInternal(err)
	}
	if err := r.loadCommentLikes(ctx, []*models.Comment{&comment}); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternal(err)
	}

	refs := make([]*models.Comment, len(comments))
	for i := range comments {
		refs[i] = &comments[i]
	}
	if err := r.loadCommentLikes(ctx, refs); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes the comment with its replies and like rows in one
// transaction.
func (r *commentRepository) DeleteComment(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replyIDs := tx.Model(&models.Reply{}).Select("id").Where("comment_id = ?", id)

		if err := tx.Where("reply_id IN (?)", replyIDs).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return models.NewInternal(err)
	}
	return nil
}

func (r *commentRepository) LikeComment(ctx context.Context, userID, commentID uint) error {
	like := models.CommentLike{UserID: userID, CommentID: commentID}
	if err := r.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewBadRequest("You have already liked this comment")
		}
		return models.NewInternal(err)
	}
	return nil
}

func (r *commentRepository) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{})
	if res.Error != nil {
		return models.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewBadRequest("You have not liked this comment")
	}
	return nil
}

func (r *commentRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return models.NewInternal(err)
	}
	reply.Likes = []uint{}
	return nil
}

func (r *commentRepository) GetReplyByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&reply, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("reply")
		}
		return nil, models.NewInternal(err)
	}
	if err := r.loadReplyLikes(ctx, []*models.Reply{&reply}); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]models.Reply, error) {
	var replies []models.Reply
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&replies).Error; err != nil {
		return nil, models.NewInternal(err)
	}

	refs := make([]*models.Reply, len(replies))
	for i := range replies {
		refs[i] = &replies[i]
	}
	if err := r.loadReplyLikes(ctx, refs); err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *commentRepository) DeleteReply(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", id).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Reply{}, id).Error
	})
	if err != nil {
		return models.NewInternal(err)
	}
	return nil
}

func (r *commentRepository) LikeReply(ctx context.Context, userID, replyID uint) error {
	like := models.ReplyLike{UserID: userID, ReplyID: replyID}
	if err := r.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewBadRequest("You have already liked this reply")
		}
		return models.NewInternal(err)
	}
	return nil
}

func (r *commentRepository) UnlikeReply(ctx context.Context, userID, replyID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND reply_id = ?", userID, replyID).
		Delete(&models.ReplyLike{})
	if res.Error != nil {
		return models.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewBadRequest("You have not liked this reply")
	}
	return nil
}
