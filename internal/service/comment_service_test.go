package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
)

// MockCommentRepository is a mock implementation of CommentRepository.
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]model.Comment, error) {
	args := m.Called(ctx, postID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCommentService_CreateComment(t *testing.T) {
	t.Run("comment on existing post", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockPosts := new(MockPostRepository)
		mockPosts.On("FindByID", mock.Anything, uint(5)).Return(&model.Post{ID: 5}, nil)
		mockComments.On("Create", mock.Anything, mock.AnythingOfType("*model.Comment")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*model.Comment).ID = 11
			}).Return(nil)

		service := NewCommentService(mockComments, mockPosts)
		comment, err := service.CreateComment(context.Background(), 5, 2, "nice post")

		assert.NoError(t, err)
		assert.Equal(t, uint(11), comment.ID)
		assert.Equal(t, uint(5), comment.PostID)
		assert.Equal(t, uint(2), comment.UserID)
		mockComments.AssertExpectations(t)
	})

	t.Run("comment on missing post inserts nothing", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockPosts := new(MockPostRepository)
		mockPosts.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		service := NewCommentService(mockComments, mockPosts)
		comment, err := service.CreateComment(context.Background(), 99, 2, "hello")

		assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		assert.Nil(t, comment)
		mockComments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCommentService_ListComments(t *testing.T) {
	mockComments := new(MockCommentRepository)
	mockPosts := new(MockPostRepository)
	mockComments.On("CountByPost", mock.Anything, uint(5)).Return(int64(14), nil)
	mockComments.On("ListByPost", mock.Anything, uint(5), 10, 0).Return([]model.Comment{
		{ID: 2, PostID: 5, User: model.User{Username: "reader"}},
	}, nil)

	service := NewCommentService(mockComments, mockPosts)
	comments, pagination, err := service.ListComments(context.Background(), 5, 0, 0)

	assert.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.Equal(t, "reader", comments[0].User.Username)
	assert.Equal(t, Pagination{Page: 1, PageSize: 10, Total: 14}, pagination)
	mockComments.AssertExpectations(t)
}

func TestCommentService_UpdateComment(t *testing.T) {
	owned := &model.Comment{ID: 11, PostID: 5, UserID: 2, Content: "original"}

	t.Run("owner updates", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockComments.On("FindByID", mock.Anything, uint(11)).Return(owned, nil)
		mockComments.On("UpdateContent", mock.Anything, uint(11), "edited").Return(nil)

		service := NewCommentService(mockComments, new(MockPostRepository))
		assert.NoError(t, service.UpdateComment(context.Background(), 11, 2, "edited"))
		mockComments.AssertExpectations(t)
	})

	t.Run("non-owner is rejected without state change", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockComments.On("FindByID", mock.Anything, uint(11)).Return(owned, nil)

		service := NewCommentService(mockComments, new(MockPostRepository))
		err := service.UpdateComment(context.Background(), 11, 3, "edited")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockComments.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing comment", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockComments.On("FindByID", mock.Anything, uint(11)).Return(nil, gorm.ErrRecordNotFound)

		service := NewCommentService(mockComments, new(MockPostRepository))
		err := service.UpdateComment(context.Background(), 11, 2, "edited")

		assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	owned := &model.Comment{ID: 11, PostID: 5, UserID: 2}

	t.Run("owner deletes", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockComments.On("FindByID", mock.Anything, uint(11)).Return(owned, nil)
		mockComments.On("Delete", mock.Anything, uint(11)).Return(nil)

		service := NewCommentService(mockComments, new(MockPostRepository))
		assert.NoError(t, service.DeleteComment(context.Background(), 11, 2))
		mockComments.AssertExpectations(t)
	})

	t.Run("non-owner is rejected without state change", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockComments.On("FindByID", mock.Anything, uint(11)).Return(owned, nil)

		service := NewCommentService(mockComments, new(MockPostRepository))
		err := service.DeleteComment(context.Background(), 11, 3)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockComments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
