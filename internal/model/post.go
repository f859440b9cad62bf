package model

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post represents a blog article. Tags are attached through the post_tags
// join table; Author is resolved from AuthorID for display.
type Post struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	AuthorID  uint       `json:"author_id" gorm:"index;not null"`
	Author    User       `json:"-" gorm:"foreignKey:AuthorID"`
	Status    PostStatus `json:"status" gorm:"size:20;not null;default:'draft';index"`
	Tags      []Tag      `json:"-" gorm:"many2many:post_tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TagNames flattens the associated tags to their names.
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Tag is a label attached to zero or more posts. Tags have no lifecycle of
// their own; they come into existence when a post first references them.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:100;not null"`
}

// PostSummary is the compact shape used by archive listings.
type PostSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
