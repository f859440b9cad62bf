package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"blogapi/internal/model"
	"blogapi/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CommentRequest represents a comment creation or update request.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CommentUser is the commenter display info attached to each comment.
type CommentUser struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// CommentView is the comment shape returned to clients.
type CommentView struct {
	ID        uint        `json:"id"`
	PostID    uint        `json:"post_id"`
	Content   string      `json:"content"`
	User      CommentUser `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateCommentResponse is returned on successful comment creation.
type CreateCommentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CommentID uint   `json:"commentId"`
}

// ListCommentsResponse carries one page of comments plus the pagination window.
type ListCommentsResponse struct {
	Success    bool               `json:"success"`
	Comments   []CommentView      `json:"comments"`
	Pagination service.Pagination `json:"pagination"`
}

func toCommentViews(comments []model.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, CommentView{
			ID:      comment.ID,
			PostID:  comment.PostID,
			Content: comment.Content,
			User: CommentUser{
				Username: comment.User.Username,
				Avatar:   comment.User.Avatar,
			},
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
		})
	}
	return views
}

// Create godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body CommentRequest true "Comment content"
// @Success 201 {object} CreateCommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	postID, err := paramID(c, "id")
	if err != nil {
		return respondValidation(c, "invalid post id")
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return respondValidation(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidation(c, err.Error())
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), postID, userID, req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, CreateCommentResponse{
		Success:   true,
		Message:   "comment created",
		CommentID: comment.ID,
	})
}

// List godoc
// @Summary List a post's comments
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param page query int false "1-indexed page" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {object} ListCommentsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return respondValidation(c, "invalid post id")
	}

	comments, pagination, err := h.commentService.ListComments(
		c.Request().Context(), postID, queryInt(c, "page"), queryInt(c, "pageSize"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, ListCommentsResponse{
		Success:    true,
		Comments:   toCommentViews(comments),
		Pagination: pagination,
	})
}

// Update godoc
// @Summary Update a comment (author only)
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body CommentRequest true "New content"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comments/{id} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return respondValidation(c, "invalid comment id")
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return respondValidation(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondValidation(c, err.Error())
	}

	if err := h.commentService.UpdateComment(c.Request().Context(), id, userID, req.Content); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "comment updated"})
}

// Delete godoc
// @Summary Delete a comment (author only)
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return respondValidation(c, "invalid comment id")
	}

	if err := h.commentService.DeleteComment(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "comment deleted"})
}
