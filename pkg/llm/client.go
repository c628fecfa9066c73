// Package llm 提供了大语言模型聊天补全的客户端。
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quantum-assistant-go/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// Client 定义了 LLM 客户端的接口。
type Client interface {
	// Complete 以 system + user 两条消息发起一次聊天补全，返回模型回复文本。
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Available 报告是否配置了 API key。未配置时调用方应降级到本地策略。
	Available() bool
}

type openaiClient struct {
	cfg    config.LLMConfig
	client *openai.Client
}

// NewClient 根据配置创建一个新的 LLM 客户端实例。
func NewClient(cfg config.LLMConfig) Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openaiClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *openaiClient) Available() bool {
	return c.cfg.APIKey != ""
}

// Complete 调用聊天补全接口。超时与生成参数由配置控制。
func (c *openaiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("llm api key not configured")
	}

	model := c.cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := c.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	temperature := float32(c.cfg.Temperature)
	if temperature <= 0 {
		temperature = 0.3
	}

	timeout := time.Duration(c.cfg.TimeoutSeconds) * time.Second
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return "", fmt.Errorf("llm api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
