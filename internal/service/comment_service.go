package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// CommentService handles comment operations. Only a comment's author may
// update or delete it.
type CommentService interface {
	CreateComment(ctx context.Context, postID, userID uint, content string) (*model.Comment, error)
	ListComments(ctx context.Context, postID uint, page, pageSize int) ([]model.Comment, Pagination, error)
	UpdateComment(ctx context.Context, id, callerID uint, content string) error
	DeleteComment(ctx context.Context, id, callerID uint) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment stores a comment on an existing post. The post lookup is
// explicit so a dangling post id reports ErrPostNotFound rather than leaking
// a store error.
func (s *commentService) CreateComment(ctx context.Context, postID, userID uint, content string) (*model.Comment, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns one page of a post's comments, newest first, each
// carrying the commenting user for display.
func (s *commentService) ListComments(ctx context.Context, postID uint, page, pageSize int) ([]model.Comment, Pagination, error) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count comments: %w", err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list comments: %w", err)
	}

	return comments, Pagination{Page: page, PageSize: pageSize, Total: total}, nil
}

// UpdateComment replaces a comment's content after verifying ownership.
func (s *commentService) UpdateComment(ctx context.Context, id, callerID uint, content string) error {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCommentNotFound
		}
		return fmt.Errorf("find comment: %w", err)
	}
	if comment.UserID != callerID {
		return apperrors.ErrForbidden
	}

	if err := s.commentRepo.UpdateContent(ctx, id, content); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment after verifying ownership.
func (s *commentService) DeleteComment(ctx context.Context, id, callerID uint) error {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCommentNotFound
		}
		return fmt.Errorf("find comment: %w", err)
	}
	if comment.UserID != callerID {
		return apperrors.ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
