// Package serp 提供了 SerpAPI 网页搜索的客户端。
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quantum-assistant-go/internal/config"
)

// Result 代表一条网页搜索结果。
type Result struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Snippet    string `json:"snippet"`
	Source     string `json:"source"`
	Position   int    `json:"position"`
	IsFeatured bool   `json:"is_featured,omitempty"`
}

// Client 定义了网页搜索的接口。
type Client interface {
	// Search 检索网页结果。未配置 API key 时返回空结果且不报错（降级模式）。
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
	// Available 报告是否配置了搜索凭证。
	Available() bool
}

type serpClient struct {
	cfg    config.SerpConfig
	client *http.Client
}

// NewClient 创建一个新的 SerpAPI 客户端实例。
func NewClient(cfg config.SerpConfig) Client {
	return &serpClient{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

func (c *serpClient) Available() bool {
	return c.cfg.APIKey != ""
}

// serpResponse 是 SerpAPI JSON 响应中我们关心的部分。
type serpResponse struct {
	OrganicResults []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic_results"`
	AnswerBox struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answer_box"`
}

// Search 向 SerpAPI 发出一次搜索请求并映射结果。
func (c *serpClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if !c.Available() {
		// 缺少凭证是受支持的降级模式，而非错误
		return []Result{}, nil
	}

	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > 10 {
		// SerpAPI 单次请求的结果上限
		maxResults = 10
	}

	// 附加量子上下文以提升结果相关性
	enhancedQuery := query + " quantum computing quantum mechanics"

	params := url.Values{}
	params.Set("q", enhancedQuery)
	params.Set("api_key", c.cfg.APIKey)
	params.Set("num", fmt.Sprintf("%d", maxResults))
	params.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create serp request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serp api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serp api returned HTTP %d", resp.StatusCode)
	}

	var data serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse serp response: %w", err)
	}

	results := make([]Result, 0, maxResults+1)
	for _, r := range data.OrganicResults {
		if len(results) >= maxResults {
			break
		}
		results = append(results, Result{
			Title:    r.Title,
			Link:     r.Link,
			Snippet:  r.Snippet,
			Source:   extractDomain(r.Link),
			Position: r.Position,
		})
	}

	// 精选摘要（answer box）置顶
	if data.AnswerBox.Title != "" || data.AnswerBox.Answer != "" || data.AnswerBox.Snippet != "" {
		snippet := data.AnswerBox.Answer
		if snippet == "" {
			snippet = data.AnswerBox.Snippet
		}
		title := data.AnswerBox.Title
		if title == "" {
			title = "Featured Answer"
		}
		featured := Result{
			Title:      title,
			Link:       data.AnswerBox.Link,
			Snippet:    snippet,
			Source:     extractDomain(data.AnswerBox.Link),
			IsFeatured: true,
		}
		results = append([]Result{featured}, results...)
	}

	return results, nil
}

// extractDomain 从 URL 中提取域名，解析失败时原样返回。
func extractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
