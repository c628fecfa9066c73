// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"time"

	"quantum-assistant-go/internal/config"
	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/internal/repository"
	"quantum-assistant-go/pkg/arxiv"
	"quantum-assistant-go/pkg/kafka"
	"quantum-assistant-go/pkg/log"
)

// PaperService 定义了论文检索与收藏的接口。
type PaperService interface {
	// Search 在 arXiv 上检索论文并记录一条检索历史。
	Search(ctx context.Context, userID uint, query string, maxResults int) ([]arxiv.Paper, error)
	// SavePaper 收藏一篇论文。同一用户重复收藏同一篇论文时覆盖已有记录。
	SavePaper(ctx context.Context, userID uint, req model.SavePaperRequest) error
	// ListSaved 列出用户收藏的全部论文，按保存时间倒序。
	ListSaved(ctx context.Context, userID uint) ([]model.SavedPaper, error)
	// DeleteSaved 删除用户的一条论文收藏。
	DeleteSaved(ctx context.Context, userID uint, paperID string) error
	// QueryHistory 返回用户最近的检索历史，最新在前。
	QueryHistory(ctx context.Context, userID uint, limit int) ([]model.QueryRecord, error)
}

type paperService struct {
	arxivClient arxiv.Client
	paperRepo   repository.PaperRepository
	cfg         config.ChatConfig
}

// NewPaperService 创建一个新的 PaperService 实例。
func NewPaperService(arxivClient arxiv.Client, paperRepo repository.PaperRepository, cfg config.ChatConfig) PaperService {
	return &paperService{
		arxivClient: arxivClient,
		paperRepo:   paperRepo,
		cfg:         cfg,
	}
}

// Search 检索论文。检索历史的写入是尽力而为的，失败只记录日志。
func (s *paperService) Search(ctx context.Context, userID uint, query string, maxResults int) ([]arxiv.Paper, error) {
	maxResults = clampCount(maxResults, s.cfg.DefaultMaxPapers, s.cfg.MaxPapersCap)

	papers, err := s.arxivClient.Search(ctx, query, maxResults, s.cfg.CategoryFilter)
	if err != nil {
		return nil, err
	}

	if err := s.paperRepo.SaveQuery(&model.QueryRecord{UserID: userID, QueryText: query}); err != nil {
		log.Warnf("[Paper] 记录检索历史失败: %v", err)
	}

	kafka.PublishUsageEvent(kafka.UsageEvent{
		Type:       "search",
		UserID:     userID,
		Query:      query,
		PaperCount: len(papers),
		Accepted:   true,
		OccurredAt: time.Now(),
	})
	return papers, nil
}

// SavePaper 收藏一篇论文。作者列表以 JSON 编码后落库。
func (s *paperService) SavePaper(ctx context.Context, userID uint, req model.SavePaperRequest) error {
	authorsJSON, err := json.Marshal(req.Authors)
	if err != nil {
		return err
	}

	paper := &model.SavedPaper{
		UserID:   userID,
		PaperID:  req.PaperID,
		Title:    req.Title,
		Authors:  string(authorsJSON),
		Abstract: req.Abstract,
		URL:      req.URL,
	}
	if req.Summary != "" {
		paper.Summary = &req.Summary
	}
	if req.PublishedDate != "" {
		if published, parseErr := time.Parse("2006-01-02", req.PublishedDate); parseErr == nil {
			paper.PublishedDate = &published
		}
	}

	return s.paperRepo.SavePaper(paper)
}

// ListSaved 列出用户收藏的论文。
func (s *paperService) ListSaved(ctx context.Context, userID uint) ([]model.SavedPaper, error) {
	return s.paperRepo.FindPapersByUser(userID)
}

// DeleteSaved 删除一条论文收藏。
func (s *paperService) DeleteSaved(ctx context.Context, userID uint, paperID string) error {
	return s.paperRepo.DeletePaper(userID, paperID)
}

// QueryHistory 返回用户最近的检索历史。
func (s *paperService) QueryHistory(ctx context.Context, userID uint, limit int) ([]model.QueryRecord, error) {
	return s.paperRepo.FindQueryHistory(userID, limit)
}
