package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/model"
	"github.com/d60-Lab/vanish/internal/repository"
	"github.com/d60-Lab/vanish/pkg/logger"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidKind  = errors.New("invalid reaction kind")
)

// ToggleResult 状态机出口：none→liked 为 created，liked→none 为 removed，
// liked→disliked / disliked→liked 为 updated
type ToggleResult string

const (
	ToggleCreated ToggleResult = "created"
	ToggleUpdated ToggleResult = "updated"
	ToggleRemoved ToggleResult = "removed"
)

// ReactionService 一人一票的赞/踩台账。
// 行变更与计数增减同事务提交，计数下限 0
type ReactionService interface {
	Toggle(ctx context.Context, postID, userID, kind string) (ToggleResult, error)
}

type reactionService struct {
	db         *gorm.DB
	postRepo   repository.PostRepository
	classifier *decay.Classifier
	refresher  *ScoreRefresher // 可为 nil
}

func NewReactionService(db *gorm.DB, postRepo repository.PostRepository, classifier *decay.Classifier, refresher *ScoreRefresher) ReactionService {
	return &reactionService{db: db, postRepo: postRepo, classifier: classifier, refresher: refresher}
}

func (s *reactionService) Toggle(ctx context.Context, postID, userID, kind string) (ToggleResult, error) {
	if kind != model.ReactionLike && kind != model.ReactionDislike {
		return "", ErrInvalidKind
	}

	result, err := s.toggleOnce(ctx, postID, userID, kind)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 同一用户并发首刷撞唯一键：当作行已存在，重走一遍状态机
		result, err = s.toggleOnce(ctx, postID, userID, kind)
	}
	if err != nil {
		return "", err
	}

	// 只有赞方向的变化参与分级；分数刷新覆盖所有赞计数变化（updated 切换也动了赞数）
	likeCountChanged := kind == model.ReactionLike || result == ToggleUpdated
	if kind == model.ReactionLike {
		s.reclassify(ctx, postID)
	}
	if likeCountChanged && s.refresher != nil {
		if post, err := s.postRepo.GetByID(ctx, postID); err == nil {
			s.refresher.Enqueue(post.AuthorID)
		}
	}
	return result, nil
}

// toggleOnce 在一个事务内完成台账行变更 + 计数增减，失败整体回滚
func (s *reactionService) toggleOnce(ctx context.Context, postID, userID, kind string) (ToggleResult, error) {
	var result ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Reaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			r := &model.Reaction{ID: uuid.New().String(), PostID: postID, UserID: userID, Kind: kind}
			if err := tx.Create(r).Error; err != nil {
				return err
			}
			if err := applyCounterDelta(tx, postID, kind, +1); err != nil {
				return err
			}
			result = ToggleCreated
		case err != nil:
			return err
		case existing.Kind == kind:
			// 重复同向：撤销
			if err := tx.Where("id = ?", existing.ID).Delete(&model.Reaction{}).Error; err != nil {
				return err
			}
			if err := applyCounterDelta(tx, postID, kind, -1); err != nil {
				return err
			}
			result = ToggleRemoved
		default:
			// 反向：原地翻转
			if err := tx.Model(&model.Reaction{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{"kind": kind, "updated_at": time.Now()}).Error; err != nil {
				return err
			}
			if err := applyCounterDelta(tx, postID, kind, +1); err != nil {
				return err
			}
			if err := applyCounterDelta(tx, postID, existing.Kind, -1); err != nil {
				return err
			}
			result = ToggleUpdated
		}
		return nil
	})
	return result, err
}

// applyCounterDelta 对 posts 行做 ±1，减法以 0 为底。
// 行不存在（并发里刚被清扫）返回 ErrPostNotFound，让整个事务干净回滚
func applyCounterDelta(tx *gorm.DB, postID, kind string, delta int) error {
	column := "like_count"
	if kind == model.ReactionDislike {
		column = "dislike_count"
	}
	var expr string
	if delta > 0 {
		expr = column + " + 1"
	} else {
		expr = "CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END"
	}
	res := tx.Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(expr))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// reclassify 赞数变化后重估等级；失败只记日志，不影响本次操作
func (s *reactionService) reclassify(ctx context.Context, postID string) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return
	}
	if tier, ok := s.classifier.Promote(post); ok {
		if err := s.postRepo.UpdateTier(ctx, postID, tier); err != nil {
			logger.Warn("tier promote failed", zap.String("post", postID), zap.Error(err))
		}
	}
}
