package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"blogapi/internal/model"
	"blogapi/internal/service"
)

// PostHandler handles post, tag and archive endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a post creation request.
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,max=255"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags"`
	Status  string   `json:"status" validate:"omitempty,oneof=draft published"`
}

// UpdatePostRequest represents a partial post update. Absent fields are left
// untouched; an explicit empty tags array clears the post's tags.
type UpdatePostRequest struct {
	Title   *string  `json:"title" validate:"omitempty,max=255"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
	Status  *string  `json:"status" validate:"omitempty,oneof=draft published"`
}

// PostView is the post shape returned to clients.
type PostView struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreatePostResponse is returned on successful post creation.
type CreatePostResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PostID  uint   `json:"postId"`
}

// ListPostsResponse carries one page of posts plus the pagination window.
type ListPostsResponse struct {
	Success    bool               `json:"success"`
	Posts      []PostView         `json:"posts"`
	Pagination service.Pagination `json:"pagination"`
}

// GetPostResponse carries a single post.
type GetPostResponse struct {
	Success bool     `json:"success"`
	Post    PostView `json:"post"`
}

// TagsResponse carries the distinct tag names.
type TagsResponse struct {
	Success bool     `json:"success"`
	Tags    []string `json:"tags"`
}

// ArchivesResponse carries the year/month archive buckets.
type ArchivesResponse struct {
	Success  bool              `json:"success"`
	Archives []service.Archive `json:"archives"`
}

// MonthPostsResponse carries the published posts of one year-month.
type MonthPostsResponse struct {
	Success bool       `json:"success"`
	Posts   []PostView `json:"posts"`
}

func toPostView(post *model.Post) PostView {
	return PostView{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		Status:     string(post.Status),
		AuthorID:   post.AuthorID,
		AuthorName: post.Author.Username,
		Tags:       post.TagNames(),
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
}

func toPostViews(posts []model.Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, toPostView(&posts[i]))
	}
	return views
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post data"
// @Success 201 {object} CreatePostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return respondValidation(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidation(c, err.Error())
	}

	post, err := h.postService.CreatePost(c.Request().Context(), userID, req.Title, req.Content, req.Tags, model.PostStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, CreatePostResponse{
		Success: true,
		Message: "post created",
		PostID:  post.ID,
	})
}

// List godoc
// @Summary List posts with filters and pagination
// @Tags posts
// @Produce json
// @Param page query int false "1-indexed page" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Param status query string false "draft or published"
// @Param tags query string false "Comma-separated tag names"
// @Param searchQuery query string false "Substring match over title, content and author name"
// @Success 200 {object} ListPostsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != string(model.PostStatusDraft) && status != string(model.PostStatusPublished) {
		return respondValidation(c, "status must be draft or published")
	}

	filter := service.ListPostsFilter{
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
		Status:   model.PostStatus(status),
		Tags:     splitTags(c.QueryParam("tags")),
		Search:   c.QueryParam("searchQuery"),
	}

	posts, pagination, err := h.postService.ListPosts(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, ListPostsResponse{
		Success:    true,
		Posts:      toPostViews(posts),
		Pagination: pagination,
	})
}

// Get godoc
// @Summary Get a single post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} GetPostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondValidation(c, "invalid post id")
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, GetPostResponse{
		Success: true,
		Post:    toPostView(post),
	})
}

// Update godoc
// @Summary Update a post (author only)
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Fields to update"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return respondValidation(c, "invalid post id")
	}

	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return respondValidation(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidation(c, err.Error())
	}

	update := service.PostUpdate{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if req.Status != nil {
		status := model.PostStatus(*req.Status)
		update.Status = &status
	}

	if err := h.postService.UpdatePost(c.Request().Context(), id, userID, update); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "post updated"})
}

// Delete godoc
// @Summary Delete a post (author only)
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return respondValidation(c, "invalid post id")
	}

	if err := h.postService.DeletePost(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "post deleted"})
}

// Tags godoc
// @Summary List distinct tag names
// @Tags tags
// @Produce json
// @Success 200 {object} TagsResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tags [get]
func (h *PostHandler) Tags(c echo.Context) error {
	tags, err := h.postService.ListTags(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, TagsResponse{Success: true, Tags: tags})
}

// Archives godoc
// @Summary List published posts grouped by year and month
// @Tags archives
// @Produce json
// @Success 200 {object} ArchivesResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /archives [get]
func (h *PostHandler) Archives(c echo.Context) error {
	archives, err := h.postService.GetArchives(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ArchivesResponse{Success: true, Archives: archives})
}

// PostsForMonth godoc
// @Summary List published posts of one year-month
// @Tags archives
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} MonthPostsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /archives/{year}/{month} [get]
func (h *PostHandler) PostsForMonth(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		return respondValidation(c, "invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return respondValidation(c, "invalid month")
	}

	posts, err := h.postService.GetPostsForMonth(c.Request().Context(), year, month)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MonthPostsResponse{
		Success: true,
		Posts:   toPostViews(posts),
	})
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}

// splitTags parses a comma-separated tag list; blank input means no filter.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
