// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"sync"
	"time"

	"quantum-assistant-go/internal/config"
	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/internal/repository"
	"quantum-assistant-go/pkg/arxiv"
	"quantum-assistant-go/pkg/kafka"
	"quantum-assistant-go/pkg/log"
	"quantum-assistant-go/pkg/serp"
)

// ChatService 定义了量子问答编排的接口。
type ChatService interface {
	// HandleQuery 处理一次完整的问答：校验、并发检索、合成回答并持久化会话。
	// 校验拒绝不是错误：返回 Success=false 的结果与 nil error。
	// 只有会话存储故障才会返回非 nil 的 error。
	HandleQuery(ctx context.Context, userID uint, req model.ChatRequest) (*model.ChatResult, error)
}

type chatService struct {
	validator        QueryValidator
	arxivClient      arxiv.Client
	serpClient       serp.Client
	synthesizer      ResponseSynthesizer
	conversationRepo repository.ConversationRepository
	cfg              config.ChatConfig
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	validator QueryValidator,
	arxivClient arxiv.Client,
	serpClient serp.Client,
	synthesizer ResponseSynthesizer,
	conversationRepo repository.ConversationRepository,
	cfg config.ChatConfig,
) ChatService {
	return &chatService{
		validator:        validator,
		arxivClient:      arxivClient,
		serpClient:       serpClient,
		synthesizer:      synthesizer,
		conversationRepo: conversationRepo,
		cfg:              cfg,
	}
}

// HandleQuery 按固定顺序推进流水线：
// 会话解析 → 领域校验 → arXiv/网页并发检索 → 回答合成 → 会话追加。
// 任一检索分支失败都降级为空结果并记录日志，不会中断问答。
func (s *chatService) HandleQuery(ctx context.Context, userID uint, req model.ChatRequest) (*model.ChatResult, error) {
	sessionID, err := s.resolveSession(ctx, userID, req.SessionID)
	if err != nil {
		return nil, err
	}

	// 1. 领域校验。域外查询在任何外部调用发生之前被拒绝。
	validation := s.validator.Validate(req.Query)
	if !validation.InDomain {
		result := &model.ChatResult{
			Success:         false,
			Query:           req.Query,
			Error:           s.validator.RejectionMessage(),
			SuggestedTopics: validation.SuggestedTopics,
			SessionID:       sessionID,
		}
		if err := s.appendRejectedTurns(ctx, userID, sessionID, req.Query, result); err != nil {
			return nil, err
		}
		s.publishEvent(userID, req.Query, 0, 0, false)
		return result, nil
	}

	maxPapers := clampCount(req.MaxPapers, s.cfg.DefaultMaxPapers, s.cfg.MaxPapersCap)
	maxWebResults := clampCount(req.MaxWebResults, s.cfg.DefaultMaxWebResults, s.cfg.MaxWebResultsCap)

	// 2. 并发检索两路来源。一路失败不影响另一路。
	papers, webResults := s.fetchSources(ctx, req.Query, maxPapers, maxWebResults)

	// 3. 合成回答。
	answer := s.synthesizer.Build(ctx, req.Query, papers, webResults)

	result := &model.ChatResult{
		Success:    true,
		Query:      req.Query,
		Answer:     answer.Text,
		Papers:     papers,
		WebResults: webResults,
		SourcesCount: &model.SourcesCount{
			Papers:     len(papers),
			WebResults: len(webResults),
		},
		SessionID: sessionID,
	}

	// 4. 持久化本轮对话。
	if err := s.appendAnsweredTurns(ctx, userID, sessionID, req.Query, answer); err != nil {
		return nil, err
	}

	s.publishEvent(userID, req.Query, len(papers), len(webResults), true)
	return result, nil
}

// resolveSession 校验传入的会话归属，缺失或不存在时创建新会话。
func (s *chatService) resolveSession(ctx context.Context, userID uint, sessionID string) (string, error) {
	if sessionID != "" {
		exists, err := s.conversationRepo.SessionExists(ctx, userID, sessionID)
		if err != nil {
			return "", err
		}
		if exists {
			return sessionID, nil
		}
		log.Warnf("[Chat] 用户 %d 引用了不存在的会话 %s，已创建新会话", userID, sessionID)
	}
	return s.conversationRepo.CreateSession(ctx, userID)
}

// fetchSources 并发调用 arXiv 与网页检索。
// 每个分支的失败都降级为空切片并通过日志侧信道记录，绝不向上传播。
func (s *chatService) fetchSources(ctx context.Context, query string, maxPapers, maxWebResults int) ([]arxiv.Paper, []serp.Result) {
	var (
		wg         sync.WaitGroup
		papers     []arxiv.Paper
		webResults []serp.Result
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		found, err := s.arxivClient.Search(ctx, query, maxPapers, s.cfg.CategoryFilter)
		if err != nil {
			log.Warnf("[Chat] arXiv 检索失败，降级为空结果: %v", err)
			return
		}
		papers = found
	}()
	go func() {
		defer wg.Done()
		found, err := s.serpClient.Search(ctx, query, maxWebResults)
		if err != nil {
			log.Warnf("[Chat] 网页检索失败，降级为空结果: %v", err)
			return
		}
		webResults = found
	}()
	wg.Wait()

	if papers == nil {
		papers = []arxiv.Paper{}
	}
	if webResults == nil {
		webResults = []serp.Result{}
	}
	return papers, webResults
}

// appendAnsweredTurns 追加用户提问与带引用的助手回答两条消息。
func (s *chatService) appendAnsweredTurns(ctx context.Context, userID uint, sessionID, query string, answer SynthesizedAnswer) error {
	now := time.Now()
	return s.conversationRepo.AppendTurns(ctx, userID, sessionID,
		model.ChatMessage{Role: "user", Content: query, Timestamp: now},
		model.ChatMessage{
			Role:      "assistant",
			Content:   answer.Text,
			Sources:   answer.AllCitations(),
			Timestamp: now,
		},
	)
}

// appendRejectedTurns 追加用户提问与拒绝说明两条消息。
// 拒绝消息不带任何来源，但携带建议话题。
func (s *chatService) appendRejectedTurns(ctx context.Context, userID uint, sessionID, query string, result *model.ChatResult) error {
	now := time.Now()
	return s.conversationRepo.AppendTurns(ctx, userID, sessionID,
		model.ChatMessage{Role: "user", Content: query, Timestamp: now},
		model.ChatMessage{
			Role:            "assistant",
			Content:         result.Error,
			SuggestedTopics: result.SuggestedTopics,
			Timestamp:       now,
		},
	)
}

// publishEvent 上报一条问答分析事件，尽力而为。
func (s *chatService) publishEvent(userID uint, query string, paperCount, webCount int, accepted bool) {
	kafka.PublishUsageEvent(kafka.UsageEvent{
		Type:       "chat",
		UserID:     userID,
		Query:      query,
		PaperCount: paperCount,
		WebCount:   webCount,
		Accepted:   accepted,
		OccurredAt: time.Now(),
	})
}

// clampCount 将请求的数量参数归一到 [1, cap]，非正值取默认值。
func clampCount(requested, defaultValue, capValue int) int {
	if requested <= 0 {
		return defaultValue
	}
	if requested > capValue {
		return capValue
	}
	return requested
}
