package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"blogapi/internal/model"
)

// PostFilter describes the conjunctive filters applied to post listings.
// Zero values mean "no filter": an empty status, an empty tag slice and a
// blank search string each leave the result set untouched.
type PostFilter struct {
	Status model.PostStatus
	Tags   []string
	Search string
}

// PostRepository defines post, tag and archive persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post, tags []string) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]model.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	SetTags(ctx context.Context, id uint, tags []string) error
	Delete(ctx context.Context, id uint) error
	ListTagNames(ctx context.Context) ([]string, error)
	ListPublishedSummaries(ctx context.Context) ([]model.PostSummary, error)
	ListPublishedBetween(ctx context.Context, start, end time.Time) ([]model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and its tag associations in one transaction. Tag
// rows are created on first use and reused afterwards.
func (r *postRepository) Create(ctx context.Context, post *model.Post, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(post).Error; err != nil {
			return err
		}
		tagRows, err := findOrCreateTags(tx, tags)
		if err != nil {
			return err
		}
		if len(tagRows) == 0 {
			return nil
		}
		return tx.Model(post).Association("Tags").Append(tagRows)
	})
}

// FindByID loads a post with its author and tags.
func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Author").
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// filtered translates a PostFilter into parameterized query clauses. The users
// join is always present because search matches the author name.
func (r *postRepository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Post{}).
		Joins("LEFT JOIN users ON users.id = posts.author_id")

	if filter.Status != "" {
		q = q.Where("posts.status = ?", filter.Status)
	}
	if len(filter.Tags) > 0 {
		q = q.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name IN ?", filter.Tags)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("posts.title LIKE ? OR posts.content LIKE ? OR users.username LIKE ?", like, like, like)
	}
	return q
}

// List returns one page of posts matching the filter, newest first. IDs are
// resolved first so the tag join cannot duplicate rows in the page window.
func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]model.Post, error) {
	var page []struct{ ID uint }
	err := r.filtered(ctx, filter).
		Select("posts.id, posts.created_at").
		Group("posts.id, posts.created_at").
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&page).Error
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		return []model.Post{}, nil
	}

	ids := make([]uint, 0, len(page))
	for _, row := range page {
		ids = append(ids, row.ID)
	}

	var posts []model.Post
	err = r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Author").
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of distinct posts matching the filter, independent
// of the page window.
func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).
		Distinct("posts.id").
		Count(&total).Error
	return total, err
}

// Update applies a partial column update and refreshes updated_at.
func (r *postRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetTags replaces the post's tag associations with the given names.
func (r *postRepository) SetTags(ctx context.Context, id uint, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tagRows, err := findOrCreateTags(tx, tags)
		if err != nil {
			return err
		}
		post := model.Post{ID: id}
		return tx.Model(&post).Association("Tags").Replace(tagRows)
	})
}

// Delete removes the post and its tag associations.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := model.Post{ID: id}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

// ListTagNames returns all tag names in alphabetical order.
func (r *postRepository) ListTagNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.Tag{}).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ListPublishedSummaries returns compact summaries of all published posts,
// newest first. The archive grouping is computed from this list.
func (r *postRepository) ListPublishedSummaries(ctx context.Context) ([]model.PostSummary, error) {
	var summaries []model.PostSummary
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("status = ?", model.PostStatusPublished).
		Order("created_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// ListPublishedBetween returns published posts created in [start, end),
// newest first.
func (r *postRepository) ListPublishedBetween(ctx context.Context, start, end time.Time) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Author").
		Where("status = ? AND created_at >= ? AND created_at < ?", model.PostStatusPublished, start, end).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func findOrCreateTags(tx *gorm.DB, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		var tag model.Tag
		if err := tx.FirstOrCreate(&tag, model.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
