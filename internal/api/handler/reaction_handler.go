package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/vanish/internal/api/middleware"
	"github.com/d60-Lab/vanish/internal/service"
	"github.com/d60-Lab/vanish/pkg/response"
)

type toggleRequest struct {
	Kind string `json:"kind" binding:"required,oneof=like dislike"`
}

// ToggleReaction 赞/踩开关：首按创建，重按撤销，反按翻转
// @Summary 赞或踩
// @Tags 反应
// @Accept json
// @Produce json
// @Param post_id path string true "内容ID"
// @Param request body toggleRequest true "like 或 dislike"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id}/reactions [post]
func (h *Handler) ToggleReaction(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	userID := c.GetString(middleware.CtxUserID)
	result, err := h.reactionService.Toggle(c.Request.Context(), c.Param("post_id"), userID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, service.ErrInvalidKind):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"result": string(result)})
}
