// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"

	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/internal/repository"
)

// ErrSessionNotFound 表示请求的会话不存在或不属于该用户。
var ErrSessionNotFound = errors.New("session not found")

// ConversationService 定义了会话管理的接口。
type ConversationService interface {
	// ListSessions 列出用户的全部会话，按创建时间倒序。
	ListSessions(ctx context.Context, userID uint) ([]model.SessionInfo, error)
	// GetSessionTurns 获取某个会话的完整消息历史。
	GetSessionTurns(ctx context.Context, userID uint, sessionID string) ([]model.ChatMessage, error)
	// DeleteSession 删除某个会话及其消息。
	DeleteSession(ctx context.Context, userID uint, sessionID string) error
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

// ListSessions 列出用户的全部会话。
func (s *conversationService) ListSessions(ctx context.Context, userID uint) ([]model.SessionInfo, error) {
	return s.repo.ListSessions(ctx, userID)
}

// GetSessionTurns 获取会话的消息历史。会话归属通过 userID 维度的存储键天然隔离。
func (s *conversationService) GetSessionTurns(ctx context.Context, userID uint, sessionID string) ([]model.ChatMessage, error) {
	exists, err := s.repo.SessionExists(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSessionNotFound
	}
	return s.repo.GetTurns(ctx, userID, sessionID)
}

// DeleteSession 删除会话。
func (s *conversationService) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	exists, err := s.repo.SessionExists(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	return s.repo.DeleteSession(ctx, userID, sessionID)
}
