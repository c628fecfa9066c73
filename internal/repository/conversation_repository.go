// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"quantum-assistant-go/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// sessionTTL 是会话数据在 Redis 中的保留时长。
const sessionTTL = 7 * 24 * time.Hour

// ConversationRepository 定义了会话存储的操作接口。
// 会话按 userID 隔离：所有操作都以所属用户为前提，跨用户访问天然不可达。
type ConversationRepository interface {
	CreateSession(ctx context.Context, userID uint) (string, error)
	SessionExists(ctx context.Context, userID uint, sessionID string) (bool, error)
	GetTurns(ctx context.Context, userID uint, sessionID string) ([]model.ChatMessage, error)
	AppendTurns(ctx context.Context, userID uint, sessionID string, turns ...model.ChatMessage) error
	ListSessions(ctx context.Context, userID uint) ([]model.SessionInfo, error)
	DeleteSession(ctx context.Context, userID uint, sessionID string) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
	maxTurns    int
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
// maxTurns 限制单个会话保留的消息条数，超出时丢弃最早的消息。
func NewConversationRepository(redisClient *redis.Client, maxTurns int) ConversationRepository {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &redisConversationRepository{redisClient: redisClient, maxTurns: maxTurns}
}

func sessionKey(userID uint, sessionID string) string {
	return fmt.Sprintf("chat:session:%d:%s", userID, sessionID)
}

func sessionIndexKey(userID uint) string {
	return fmt.Sprintf("chat:sessions:%d", userID)
}

// CreateSession 创建一个新会话并登记到用户的会话索引。
func (r *redisConversationRepository) CreateSession(ctx context.Context, userID uint) (string, error) {
	sessionID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	if err := r.redisClient.HSet(ctx, sessionIndexKey(userID), sessionID, createdAt).Err(); err != nil {
		return "", fmt.Errorf("failed to register session: %w", err)
	}
	if err := r.redisClient.Expire(ctx, sessionIndexKey(userID), sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to set session index ttl: %w", err)
	}
	return sessionID, nil
}

// SessionExists 检查会话是否属于该用户且仍然存在。
func (r *redisConversationRepository) SessionExists(ctx context.Context, userID uint, sessionID string) (bool, error) {
	exists, err := r.redisClient.HExists(ctx, sessionIndexKey(userID), sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return exists, nil
}

// GetTurns 获取会话的完整消息列表。会话尚无消息时返回空切片。
func (r *redisConversationRepository) GetTurns(ctx context.Context, userID uint, sessionID string) ([]model.ChatMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, sessionKey(userID, sessionID)).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session turns: %w", err)
	}
	var turns []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session turns: %w", err)
	}
	return turns, nil
}

// AppendTurns 将若干条消息追加到会话末尾。
// 会话消息是 append-only 的，按时间戳排序；超出上限时裁剪最早的消息。
func (r *redisConversationRepository) AppendTurns(ctx context.Context, userID uint, sessionID string, turns ...model.ChatMessage) error {
	history, err := r.GetTurns(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	history = append(history, turns...)
	if len(history) > r.maxTurns {
		history = history[len(history)-r.maxTurns:]
	}

	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal session turns: %w", err)
	}
	if err := r.redisClient.Set(ctx, sessionKey(userID, sessionID), jsonData, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to set session turns: %w", err)
	}
	return nil
}

// ListSessions 列出用户的全部会话，按创建时间倒序。
func (r *redisConversationRepository) ListSessions(ctx context.Context, userID uint) ([]model.SessionInfo, error) {
	entries, err := r.redisClient.HGetAll(ctx, sessionIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]model.SessionInfo, 0, len(entries))
	for sessionID, createdAtStr := range entries {
		createdAt, parseErr := time.Parse(time.RFC3339Nano, createdAtStr)
		if parseErr != nil {
			continue
		}
		sessions = append(sessions, model.SessionInfo{SessionID: sessionID, CreatedAt: createdAt})
	}

	// 按创建时间倒序
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteSession 删除一个会话及其在索引中的登记。
func (r *redisConversationRepository) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	if err := r.redisClient.Del(ctx, sessionKey(userID, sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session turns: %w", err)
	}
	if err := r.redisClient.HDel(ctx, sessionIndexKey(userID), sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unregister session: %w", err)
	}
	return nil
}
