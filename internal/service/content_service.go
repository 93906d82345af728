package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/vanish/internal/decay"
	"github.com/d60-Lab/vanish/internal/model"
	"github.com/d60-Lab/vanish/internal/repository"
)

var ErrCommentNotFound = errors.New("comment not found")

// ContentService 内容生命周期：创建、查询剩余寿命、评论、删除。
// 创建时正文与主体同事务落地；删除级联清掉正文/反应/评论并归档寿命记录
type ContentService struct {
	db           *gorm.DB
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository
	engine       *decay.Engine
	refresher    *ScoreRefresher // 可为 nil
	now          func() time.Time
}

func NewContentService(db *gorm.DB, postRepo repository.PostRepository, reactionRepo repository.ReactionRepository, engine *decay.Engine, refresher *ScoreRefresher) *ContentService {
	return &ContentService{db: db, postRepo: postRepo, reactionRepo: reactionRepo, engine: engine, refresher: refresher, now: time.Now}
}

// SetNow 注入时钟，测试用
func (s *ContentService) SetNow(now func() time.Time) { s.now = now }

// CreatePost 在一个事务内落地 Post 与正文
func (s *ContentService) CreatePost(ctx context.Context, authorID, text string) (string, error) {
	postID := uuid.New().String()
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := &model.Post{ID: postID, AuthorID: authorID, Tier: model.TierNone, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		body := &model.PostBody{ID: uuid.New().String(), PostID: postID, Text: text, CreatedAt: now}
		if err := tx.Create(body).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return postID, nil
}

// Remaining 内容当前剩余寿命（秒）；gold 返回 infinite
func (s *ContentService) Remaining(ctx context.Context, postID string) (float64, bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, ErrPostNotFound
		}
		return 0, false, err
	}
	seconds, infinite := s.engine.Remaining(post, s.now())
	return seconds, infinite, nil
}

// GetPost 主体 + 正文
func (s *ContentService) GetPost(ctx context.Context, postID, viewerID string) (*model.Post, *model.PostBody, string, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", ErrPostNotFound
		}
		return nil, nil, "", err
	}
	body, err := s.postRepo.GetBody(ctx, postID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, "", err
	}
	myReaction := ""
	if viewerID != "" {
		reaction, err := s.reactionRepo.Get(ctx, postID, viewerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", err
		}
		if reaction != nil {
			myReaction = reaction.Kind
		}
	}
	return post, body, myReaction, nil
}

// DeletePost 显式删除，与清扫走同一条级联 + 归档路径
func (s *ContentService) DeletePost(ctx context.Context, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	deleted, err := purgePost(ctx, s.db, post, s.now(), false)
	if err != nil {
		return err
	}
	if deleted && s.refresher != nil {
		s.refresher.Enqueue(post.AuthorID)
	}
	return nil
}

// AddComment 评论与计数同事务；成功后异步刷作者分数
func (s *ContentService) AddComment(ctx context.Context, postID, authorID, text string) (string, error) {
	commentID := uuid.New().String()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := &model.Comment{ID: commentID, PostID: postID, AuthorID: authorID, Text: text}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if s.refresher != nil {
		if post, err := s.postRepo.GetByID(ctx, postID); err == nil {
			s.refresher.Enqueue(post.AuthorID)
		}
	}
	return commentID, nil
}

// DeleteComment 撤评论并回扣计数（下限 0）
func (s *ContentService) DeleteComment(ctx context.Context, commentID string) error {
	var ownerID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Comment
		if err := tx.Where("id = ?", commentID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		if err := tx.Where("id = ?", commentID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Post{}).
			Where("id = ?", c.PostID).
			UpdateColumn("comment_count", gorm.Expr("CASE WHEN comment_count > 0 THEN comment_count - 1 ELSE 0 END"))
		if res.Error != nil {
			return res.Error
		}
		var p model.Post
		if err := tx.Select("author_id").Where("id = ?", c.PostID).First(&p).Error; err == nil {
			ownerID = p.AuthorID
		}
		return nil
	})
	if err != nil {
		return err
	}
	if ownerID != "" && s.refresher != nil {
		s.refresher.Enqueue(ownerID)
	}
	return nil
}

// purgePost 级联删除内容（主体、正文、反应、评论）并归档寿命记录，全部同一事务。
// guardGold 是清扫路径的免死金牌复核：行已被别人删掉、或刚升 gold，都直接放弃（幂等）。
// 作者主动删除不受 gold 限制。返回是否真的删了
func purgePost(ctx context.Context, db *gorm.DB, post *model.Post, now time.Time, guardGold bool) (bool, error) {
	deleted := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", post.ID)
		if guardGold {
			q = q.Where("tier <> ?", model.TierGold)
		}
		res := q.Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.PostBody{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		rec := &model.LifetimeRecord{
			ID:              uuid.New().String(),
			OwnerID:         post.AuthorID,
			PostID:          post.ID,
			PostCreatedAt:   post.CreatedAt,
			DeletedAt:       now,
			LifetimeSeconds: now.Sub(post.CreatedAt).Seconds(),
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
