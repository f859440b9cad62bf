package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"blogapi/internal/cache"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// MockPostRepository is a mock implementation of PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post, tags []string) error {
	args := m.Called(ctx, post, tags)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]model.Post, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) Count(ctx context.Context, filter repository.PostFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockPostRepository) SetTags(ctx context.Context, id uint, tags []string) error {
	args := m.Called(ctx, id, tags)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) ListTagNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPostRepository) ListPublishedSummaries(ctx context.Context) ([]model.PostSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PostSummary), args.Error(1)
}

func (m *MockPostRepository) ListPublishedBetween(ctx context.Context, start, end time.Time) ([]model.Post, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

// noCache is a nil cache client; every lookup misses and writes are dropped.
var noCache = (*cache.Client)(nil)

func TestPostService_CreatePost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Post"), []string{"go", "web"}).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Post).ID = 3
		}).Return(nil)

	service := NewPostService(mockRepo, noCache)

	// duplicates and blanks are dropped; missing status defaults to draft
	post, err := service.CreatePost(context.Background(), 1, "Title", "Body", []string{"go", "go", "", "web"}, "")

	assert.NoError(t, err)
	assert.Equal(t, uint(3), post.ID)
	assert.Equal(t, uint(1), post.AuthorID)
	assert.Equal(t, model.PostStatusDraft, post.Status)
	mockRepo.AssertExpectations(t)
}

func TestPostService_ListPosts(t *testing.T) {
	tests := []struct {
		name           string
		filter         ListPostsFilter
		expectedFilter repository.PostFilter
		expectedLimit  int
		expectedOffset int
		total          int64
		expectedPage   int
	}{
		{
			name:           "defaults applied",
			filter:         ListPostsFilter{},
			expectedFilter: repository.PostFilter{},
			expectedLimit:  10,
			expectedOffset: 0,
			total:          23,
			expectedPage:   1,
		},
		{
			name: "explicit window and filters",
			filter: ListPostsFilter{
				Page:     3,
				PageSize: 5,
				Status:   model.PostStatusPublished,
				Tags:     []string{"go", "go"},
				Search:   "gorm",
			},
			expectedFilter: repository.PostFilter{
				Status: model.PostStatusPublished,
				Tags:   []string{"go"},
				Search: "gorm",
			},
			expectedLimit:  5,
			expectedOffset: 10,
			total:          2,
			expectedPage:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockPostRepository)
			mockRepo.On("Count", mock.Anything, tt.expectedFilter).Return(tt.total, nil)
			mockRepo.On("List", mock.Anything, tt.expectedFilter, tt.expectedLimit, tt.expectedOffset).
				Return([]model.Post{}, nil)

			service := NewPostService(mockRepo, noCache)
			_, pagination, err := service.ListPosts(context.Background(), tt.filter)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedPage, pagination.Page)
			assert.Equal(t, tt.expectedLimit, pagination.PageSize)
			assert.Equal(t, tt.total, pagination.Total)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestPostService_GetPost_NotFound(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockRepo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	service := NewPostService(mockRepo, noCache)
	post, err := service.GetPost(context.Background(), 99)

	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	assert.Nil(t, post)
}

func TestPostService_UpdatePost(t *testing.T) {
	title := "New title"
	owned := &model.Post{ID: 5, AuthorID: 1, Title: "Old title"}

	t.Run("owner updates supplied fields only", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(owned, nil)
		mockRepo.On("Update", mock.Anything, uint(5), map[string]interface{}{"title": title}).Return(nil)

		service := NewPostService(mockRepo, noCache)
		err := service.UpdatePost(context.Background(), 5, 1, PostUpdate{Title: &title})

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "SetTags", mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("tags replaced when supplied", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(owned, nil)
		mockRepo.On("Update", mock.Anything, uint(5), map[string]interface{}{}).Return(nil)
		mockRepo.On("SetTags", mock.Anything, uint(5), []string{"go"}).Return(nil)

		service := NewPostService(mockRepo, noCache)
		err := service.UpdatePost(context.Background(), 5, 1, PostUpdate{Tags: []string{"go", "go"}})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner is rejected without state change", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(owned, nil)

		service := NewPostService(mockRepo, noCache)
		err := service.UpdatePost(context.Background(), 5, 2, PostUpdate{Title: &title})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "SetTags", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing post", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		service := NewPostService(mockRepo, noCache)
		err := service.UpdatePost(context.Background(), 5, 1, PostUpdate{Title: &title})

		assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	owned := &model.Post{ID: 5, AuthorID: 1}

	t.Run("owner deletes", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(owned, nil)
		mockRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

		service := NewPostService(mockRepo, noCache)
		assert.NoError(t, service.DeletePost(context.Background(), 5, 1))
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner is rejected without state change", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(owned, nil)

		service := NewPostService(mockRepo, noCache)
		err := service.DeletePost(context.Background(), 5, 2)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPostService_GetArchives(t *testing.T) {
	march := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	january := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)

	mockRepo := new(MockPostRepository)
	mockRepo.On("ListPublishedSummaries", mock.Anything).Return([]model.PostSummary{
		{ID: 3, Title: "March later", CreatedAt: march.AddDate(0, 0, 5)},
		{ID: 2, Title: "March earlier", CreatedAt: march},
		{ID: 1, Title: "January", CreatedAt: january},
	}, nil)

	service := NewPostService(mockRepo, noCache)
	archives, err := service.GetArchives(context.Background())

	assert.NoError(t, err)
	assert.Len(t, archives, 2)

	assert.Equal(t, 2024, archives[0].Year)
	assert.Equal(t, 3, archives[0].Month)
	assert.Equal(t, 2, archives[0].PostCount)
	assert.Len(t, archives[0].Posts, 2)

	assert.Equal(t, 2024, archives[1].Year)
	assert.Equal(t, 1, archives[1].Month)
	assert.Equal(t, 1, archives[1].PostCount)
	assert.Equal(t, uint(1), archives[1].Posts[0].ID)
}

func TestPostService_GetPostsForMonth(t *testing.T) {
	mockRepo := new(MockPostRepository)
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)
	mockRepo.On("ListPublishedBetween", mock.Anything, start, end).Return([]model.Post{{ID: 8}}, nil)

	service := NewPostService(mockRepo, noCache)
	posts, err := service.GetPostsForMonth(context.Background(), 2024, 2)

	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	mockRepo.AssertExpectations(t)
}

func TestPostService_ListTags(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockRepo.On("ListTagNames", mock.Anything).Return([]string{"go", "web"}, nil)

	service := NewPostService(mockRepo, noCache)
	tags, err := service.ListTags(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)
}
