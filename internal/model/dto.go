// Package model 包含了应用的数据模型定义。
package model

import (
	"quantum-assistant-go/pkg/arxiv"
	"quantum-assistant-go/pkg/serp"
)

// ChatRequest 定义了量子问答 API 的请求体结构。
type ChatRequest struct {
	Query         string `json:"query" binding:"required"`
	SessionID     string `json:"session_id"`
	MaxPapers     int    `json:"max_papers"`
	MaxWebResults int    `json:"max_web_results"`
}

// SourcesCount 统计回答所使用的来源数量。
// 零值无法区分"没有匹配"与"上游不可用"，与源系统行为保持一致。
type SourcesCount struct {
	Papers     int `json:"papers"`
	WebResults int `json:"web_results"`
}

// SavePaperRequest 定义了论文收藏的请求体结构。
type SavePaperRequest struct {
	PaperID       string   `json:"paper_id" binding:"required"`
	Title         string   `json:"title" binding:"required"`
	Authors       []string `json:"authors"`
	Abstract      string   `json:"abstract"`
	Summary       string   `json:"summary"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"published_date"` // YYYY-MM-DD
}

// SummaryResult 是摘要操作的结果。Model 标识实际使用的策略。
type SummaryResult struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

// AnalysisResult 是分析操作的结果。
type AnalysisResult struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Model   string `json:"model"`
}

// ChatResult 是量子问答操作的结构化结果。
// Success 为 false 时表示查询被校验拒绝，Error 与 SuggestedTopics 被填充；
// 为 true 时 Answer、Papers、WebResults 与 SourcesCount 被填充。
type ChatResult struct {
	Success         bool          `json:"success"`
	Query           string        `json:"query"`
	Answer          string        `json:"answer,omitempty"`
	Papers          []arxiv.Paper `json:"papers,omitempty"`
	WebResults      []serp.Result `json:"web_results,omitempty"`
	SourcesCount    *SourcesCount `json:"sources_count,omitempty"`
	Error           string        `json:"error,omitempty"`
	SuggestedTopics []string      `json:"suggested_topics,omitempty"`
	SessionID       string        `json:"session_id,omitempty"`
}
