package handler

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/vanish/internal/api/middleware"
	"github.com/d60-Lab/vanish/internal/repository"
	"github.com/d60-Lab/vanish/internal/service"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// RegisterValidations 挂自定义校验规则
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
	}
}

// Handler 聚合各路由处理器
type Handler struct {
	contentService  *service.ContentService
	reactionService service.ReactionService
	messageService  *service.MessageService
	userService     *service.UserService
	scoreService    *service.ScoreService
	recordRepo      repository.LifetimeRecordRepository
	sweeper         *service.Sweeper
}

func NewHandler(
	contentService *service.ContentService,
	reactionService service.ReactionService,
	messageService *service.MessageService,
	userService *service.UserService,
	scoreService *service.ScoreService,
	recordRepo repository.LifetimeRecordRepository,
	sweeper *service.Sweeper,
) *Handler {
	return &Handler{
		contentService:  contentService,
		reactionService: reactionService,
		messageService:  messageService,
		userService:     userService,
		scoreService:    scoreService,
		recordRepo:      recordRepo,
		sweeper:         sweeper,
	}
}

// RegisterRoutes 注册全部路由
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1")

	api.POST("/users/register", h.Register)
	api.POST("/users/login", h.Login)

	auth := api.Group("", middleware.Auth(jwtSecret))
	{
		auth.POST("/posts", h.CreatePost)
		auth.GET("/posts/:post_id", h.GetPost)
		auth.DELETE("/posts/:post_id", h.DeletePost)
		auth.GET("/posts/:post_id/lifetime", h.GetLifetime)
		auth.POST("/posts/:post_id/reactions", h.ToggleReaction)
		auth.POST("/posts/:post_id/comments", h.AddComment)
		auth.DELETE("/comments/:comment_id", h.DeleteComment)

		auth.GET("/users/:user_id/score", h.GetUserScore)
		auth.GET("/users/:user_id/records", h.ListLifetimeRecords)

		auth.POST("/conversations", h.CreateConversation)
		auth.POST("/conversations/:conversation_id/participants", h.AddParticipant)
		auth.POST("/conversations/:conversation_id/messages", h.SendMessage)
		auth.GET("/conversations/:conversation_id/messages", h.ListMessages)

		auth.POST("/admin/sweep", h.RunSweep)
	}
}
