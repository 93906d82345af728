package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/vanish/internal/api/middleware"
	"github.com/d60-Lab/vanish/internal/service"
	"github.com/d60-Lab/vanish/pkg/response"
)

type createConversationRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=2"`
}

// CreateConversation 建会话
// @Summary 创建会话
// @Tags 私信
// @Accept json
// @Param request body createConversationRequest true "成员列表"
// @Success 200 {object} response.Response
// @Router /api/v1/conversations [post]
func (h *Handler) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	convID, err := h.messageService.CreateConversation(c.Request.Context(), req.UserIDs)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"conversation_id": convID})
}

type addParticipantRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AddParticipant 拉人进会话
// @Summary 添加会话成员
// @Tags 私信
// @Accept json
// @Param conversation_id path string true "会话ID"
// @Param request body addParticipantRequest true "被拉用户"
// @Success 200 {object} response.Response
// @Router /api/v1/conversations/{conversation_id}/participants [post]
func (h *Handler) AddParticipant(c *gin.Context) {
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	operatorID := c.GetString(middleware.CtxUserID)
	err := h.messageService.AddParticipant(c.Request.Context(), c.Param("conversation_id"), operatorID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			response.NotFound(c, "conversation not found")
		case errors.Is(err, service.ErrNotParticipant):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, nil)
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// SendMessage 发私信，到期时间按成员分数算定
// @Summary 发送私信
// @Tags 私信
// @Accept json
// @Param conversation_id path string true "会话ID"
// @Param request body sendMessageRequest true "消息内容"
// @Success 200 {object} response.Response
// @Router /api/v1/conversations/{conversation_id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	senderID := c.GetString(middleware.CtxUserID)
	msg, err := h.messageService.Send(c.Request.Context(), c.Param("conversation_id"), senderID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			response.NotFound(c, "conversation not found")
		case errors.Is(err, service.ErrNotParticipant):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"message_id": msg.ID, "expires_at": msg.ExpiresAt})
}

// ListMessages 拉取未到期消息
// @Summary 查询私信
// @Tags 私信
// @Param conversation_id path string true "会话ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} response.Response
// @Router /api/v1/conversations/{conversation_id}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	list, err := h.messageService.List(c.Request.Context(), c.Param("conversation_id"), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
