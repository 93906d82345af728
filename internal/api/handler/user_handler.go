package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/vanish/internal/service"
	"github.com/d60-Lab/vanish/pkg/response"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register 注册
// @Summary 注册用户
// @Tags 用户
// @Accept json
// @Param request body registerRequest true "注册信息"
// @Success 200 {object} response.Response
// @Router /api/v1/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	userID, err := h.userService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": userID})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录换 token
// @Summary 登录
// @Tags 用户
// @Accept json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Router /api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

// GetUserScore 查用户分数。默认读落库值（异步派生）；fresh=true 现算
// @Summary 查询用户分数
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Param fresh query bool false "是否现算" default(false)
// @Success 200 {object} response.Response
// @Router /api/v1/users/{user_id}/score [get]
func (h *Handler) GetUserScore(c *gin.Context) {
	userID := c.Param("user_id")
	var (
		score float64
		err   error
	)
	if c.Query("fresh") == "true" {
		score, err = h.scoreService.ComputeUserScore(c.Request.Context(), userID)
	} else {
		score, err = h.userService.Score(c.Request.Context(), userID)
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"score_seconds": score})
}

// ListLifetimeRecords 查用户的内容寿命归档
// @Summary 查询寿命归档
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response
// @Router /api/v1/users/{user_id}/records [get]
func (h *Handler) ListLifetimeRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	list, err := h.recordRepo.ListByOwner(c.Request.Context(), c.Param("user_id"), (page-1)*pageSize, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// RunSweep 手动触发一趟清扫
// @Summary 手动清扫
// @Tags 管理
// @Success 200 {object} response.Response
// @Router /api/v1/admin/sweep [post]
func (h *Handler) RunSweep(c *gin.Context) {
	deleted, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
