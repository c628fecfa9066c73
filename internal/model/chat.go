// Package model 包含了应用的数据模型定义。
package model

import "time"

// CitedSource 代表助手回复所引用的一条来源（论文或网页）。
type CitedSource struct {
	Type     string `json:"type"` // "arxiv" 或 "web"
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Source   string `json:"source,omitempty"`
	Citation string `json:"citation"`
}

// ChatMessage 代表会话中的单条消息。
// 被拒绝的查询所产生的助手消息不携带来源，改为携带建议话题列表。
type ChatMessage struct {
	Role            string        `json:"role"` // "user" 或 "assistant"
	Content         string        `json:"content"`
	Sources         []CitedSource `json:"sources,omitempty"`
	SuggestedTopics []string      `json:"suggestedTopics,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}

// SessionInfo 代表一个会话的摘要信息，用于会话列表。
type SessionInfo struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidationResult 是查询校验的结果。
// SuggestedTopics 仅在 InDomain 为 false 时填充。
type ValidationResult struct {
	InDomain        bool     `json:"inDomain"`
	MatchedKeywords []string `json:"matchedKeywords"`
	SuggestedTopics []string `json:"suggestedTopics,omitempty"`
}
