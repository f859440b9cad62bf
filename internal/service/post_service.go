package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"blogapi/internal/cache"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 10

	tagsCacheKey     = "blog:tags"
	archivesCacheKey = "blog:archives"
	browseCacheTTL   = 5 * time.Minute
)

// ListPostsFilter carries the caller-supplied listing parameters. Filters are
// conjunctive; empty values mean "no filter", never "match nothing".
type ListPostsFilter struct {
	Page     int
	PageSize int
	Status   model.PostStatus
	Tags     []string
	Search   string
}

// PostUpdate carries a partial post mutation. Nil fields are left untouched;
// a non-nil empty Tags slice clears the post's tags.
type PostUpdate struct {
	Title   *string
	Content *string
	Status  *model.PostStatus
	Tags    []string
}

// Pagination describes the returned page window and the full filtered count.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// Archive is one year/month bucket of published posts.
type Archive struct {
	Year      int                 `json:"year"`
	Month     int                 `json:"month"`
	PostCount int                 `json:"postCount"`
	Posts     []model.PostSummary `json:"posts"`
}

// PostService handles post, tag and archive operations. Ownership is enforced
// here: only a post's author may update or delete it.
type PostService interface {
	CreatePost(ctx context.Context, authorID uint, title, content string, tags []string, status model.PostStatus) (*model.Post, error)
	ListPosts(ctx context.Context, filter ListPostsFilter) ([]model.Post, Pagination, error)
	GetPost(ctx context.Context, id uint) (*model.Post, error)
	UpdatePost(ctx context.Context, id, callerID uint, update PostUpdate) error
	DeletePost(ctx context.Context, id, callerID uint) error
	ListTags(ctx context.Context) ([]string, error)
	GetArchives(ctx context.Context) ([]Archive, error)
	GetPostsForMonth(ctx context.Context, year, month int) ([]model.Post, error)
}

type postService struct {
	postRepo repository.PostRepository
	cache    *cache.Client
}

// NewPostService creates a new post service.
func NewPostService(postRepo repository.PostRepository, cache *cache.Client) PostService {
	return &postService{
		postRepo: postRepo,
		cache:    cache,
	}
}

// CreatePost stores a new post owned by authorID. Status defaults to draft;
// tag names are deduplicated and blank names dropped.
func (s *postService) CreatePost(ctx context.Context, authorID uint, title, content string, tags []string, status model.PostStatus) (*model.Post, error) {
	if status == "" {
		status = model.PostStatusDraft
	}

	post := &model.Post{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
		Status:   status,
	}

	if err := s.postRepo.Create(ctx, post, dedupTags(tags)); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.invalidateBrowseCache(ctx)
	return post, nil
}

// ListPosts returns one page of posts matching the filter, newest first,
// together with the total filtered count.
func (s *postService) ListPosts(ctx context.Context, filter ListPostsFilter) ([]model.Post, Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	repoFilter := repository.PostFilter{
		Status: filter.Status,
		Tags:   dedupTags(filter.Tags),
		Search: filter.Search,
	}

	total, err := s.postRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count posts: %w", err)
	}

	posts, err := s.postRepo.List(ctx, repoFilter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list posts: %w", err)
	}

	return posts, Pagination{Page: page, PageSize: pageSize, Total: total}, nil
}

// GetPost retrieves a single post with author and tags.
func (s *postService) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

// UpdatePost applies a partial update after verifying the caller owns the
// post. Only supplied fields change; updated_at always refreshes.
func (s *postService) UpdatePost(ctx context.Context, id, callerID uint, update PostUpdate) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("find post: %w", err)
	}
	if post.AuthorID != callerID {
		return apperrors.ErrForbidden
	}

	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Content != nil {
		updates["content"] = *update.Content
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if err := s.postRepo.Update(ctx, id, updates); err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if update.Tags != nil {
		if err := s.postRepo.SetTags(ctx, id, dedupTags(update.Tags)); err != nil {
			return fmt.Errorf("update tags: %w", err)
		}
	}

	s.invalidateBrowseCache(ctx)
	return nil
}

// DeletePost removes a post after verifying the caller owns it.
func (s *postService) DeletePost(ctx context.Context, id, callerID uint) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("find post: %w", err)
	}
	if post.AuthorID != callerID {
		return apperrors.ErrForbidden
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.invalidateBrowseCache(ctx)
	return nil
}

// ListTags returns all tag names alphabetically, cached with a short TTL.
func (s *postService) ListTags(ctx context.Context) ([]string, error) {
	var cached []string
	if s.cache.GetJSON(ctx, tagsCacheKey, &cached) {
		return cached, nil
	}

	names, err := s.postRepo.ListTagNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	s.cache.SetJSON(ctx, tagsCacheKey, names, browseCacheTTL)
	return names, nil
}

// GetArchives groups published posts into year/month buckets, newest bucket
// first. The input is already sorted newest first, so a bucket closes as soon
// as the year/month key changes.
func (s *postService) GetArchives(ctx context.Context) ([]Archive, error) {
	var cached []Archive
	if s.cache.GetJSON(ctx, archivesCacheKey, &cached) {
		return cached, nil
	}

	summaries, err := s.postRepo.ListPublishedSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}

	archives := make([]Archive, 0)
	for _, summary := range summaries {
		year, month := summary.CreatedAt.Year(), int(summary.CreatedAt.Month())
		if n := len(archives); n > 0 && archives[n-1].Year == year && archives[n-1].Month == month {
			archives[n-1].Posts = append(archives[n-1].Posts, summary)
			archives[n-1].PostCount++
			continue
		}
		archives = append(archives, Archive{
			Year:      year,
			Month:     month,
			PostCount: 1,
			Posts:     []model.PostSummary{summary},
		})
	}

	s.cache.SetJSON(ctx, archivesCacheKey, archives, browseCacheTTL)
	return archives, nil
}

// GetPostsForMonth returns published posts created in the given year-month,
// newest first.
func (s *postService) GetPostsForMonth(ctx context.Context, year, month int) ([]model.Post, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	posts, err := s.postRepo.ListPublishedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list posts for month: %w", err)
	}
	return posts, nil
}

func (s *postService) invalidateBrowseCache(ctx context.Context) {
	_ = s.cache.Delete(ctx, tagsCacheKey)
	_ = s.cache.Delete(ctx, archivesCacheKey)
}

// dedupTags drops blank names and duplicates while preserving order.
func dedupTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
