package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/vanish/internal/api/middleware"
	"github.com/d60-Lab/vanish/internal/service"
	"github.com/d60-Lab/vanish/pkg/response"
)

type createPostRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreatePost 发内容（正文同事务落地）
// @Summary 发布内容
// @Tags 内容
// @Accept json
// @Produce json
// @Param request body createPostRequest true "正文"
// @Success 200 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	userID := c.GetString(middleware.CtxUserID)
	postID, err := h.contentService.CreatePost(c.Request.Context(), userID, req.Text)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"post_id": postID})
}

// GetPost 查内容与当前剩余寿命
// @Summary 查询内容
// @Tags 内容
// @Param post_id path string true "内容ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	postID := c.Param("post_id")
	viewerID := c.GetString(middleware.CtxUserID)
	post, body, myReaction, err := h.contentService.GetPost(c.Request.Context(), postID, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	seconds, infinite, err := h.contentService.Remaining(c.Request.Context(), postID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	text := ""
	if body != nil {
		text = body.Text
	}
	response.Success(c, gin.H{
		"post":              post,
		"text":              text,
		"my_reaction":       myReaction,
		"remaining_seconds": seconds,
		"infinite":          infinite,
	})
}

// GetLifetime 只查剩余寿命
// @Summary 查询剩余寿命
// @Tags 内容
// @Param post_id path string true "内容ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/lifetime [get]
func (h *Handler) GetLifetime(c *gin.Context) {
	seconds, infinite, err := h.contentService.Remaining(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"remaining_seconds": seconds, "infinite": infinite})
}

// DeletePost 作者主动删除
// @Summary 删除内容
// @Tags 内容
// @Param post_id path string true "内容ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.contentService.DeletePost(c.Request.Context(), c.Param("post_id")); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment 评论
// @Summary 发表评论
// @Tags 内容
// @Accept json
// @Param post_id path string true "内容ID"
// @Param request body addCommentRequest true "评论内容"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{post_id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	userID := c.GetString(middleware.CtxUserID)
	commentID, err := h.contentService.AddComment(c.Request.Context(), c.Param("post_id"), userID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"comment_id": commentID})
}

// DeleteComment 撤评论
// @Summary 删除评论
// @Tags 内容
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{comment_id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.contentService.DeleteComment(c.Request.Context(), c.Param("comment_id")); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			response.NotFound(c, "comment not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
