package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"blogapi/internal/model"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uint) (*model.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]model.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByID finds a comment by ID.
func (r *commentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns one page of a post's comments with their authors,
// newest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByPost returns the total number of comments on a post.
func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ?", postID).
		Count(&total).Error
	return total, err
}

// UpdateContent replaces a comment's content and refreshes updated_at.
func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": time.Now(),
		}).Error
}

// Delete removes a comment.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Comment{}, id).Error
}
