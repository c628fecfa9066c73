// Package arxiv 提供了 arXiv 论文检索 API 的客户端。
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"quantum-assistant-go/internal/config"
)

// Paper 代表一条从 arXiv 返回的论文元数据。
// 每次调用都从上游重新获取，本服务不做任何缓存。
type Paper struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Abstract   string   `json:"abstract"`
	URL        string   `json:"url"`
	PDFURL     string   `json:"pdf_url"`
	Published  string   `json:"published"`
	Updated    string   `json:"updated"`
	Categories []string `json:"categories"`
}

// Client 定义了论文检索的接口。
type Client interface {
	// Search 按相关度检索论文。categoryFilter 非空时会作为 cat: 条件拼接到查询中。
	// maxResults 会被钳制到配置的上限，以保护上游服务和响应体积。
	Search(ctx context.Context, query string, maxResults int, categoryFilter string) ([]Paper, error)
	// GetPaperDetails 按 arXiv ID 获取单篇论文的详细信息。
	GetPaperDetails(ctx context.Context, arxivID string) (*Paper, error)
}

type arxivClient struct {
	cfg    config.ArxivConfig
	client *http.Client
}

// NewClient 创建一个新的 arXiv 客户端实例。
func NewClient(cfg config.ArxivConfig) Client {
	return &arxivClient{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// arxivIDPattern 从条目的 id URL 中提取 arXiv 编号（如 2301.07041）。
var arxivIDPattern = regexp.MustCompile(`(\d+\.\d+)`)

// Search 向 arXiv API 发出一次检索请求并解析 Atom 响应。
func (c *arxivClient) Search(ctx context.Context, query string, maxResults int, categoryFilter string) ([]Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arxiv query")
	}

	if maxResults <= 0 {
		maxResults = 10
	}
	if c.cfg.MaxResultsCap > 0 && maxResults > c.cfg.MaxResultsCap {
		maxResults = c.cfg.MaxResultsCap
	}

	searchQuery := "all:" + query
	if categoryFilter != "" {
		// 用类别条件收窄检索范围，如 cat:quant-ph
		searchQuery = fmt.Sprintf("cat:%s AND all:%s", categoryFilter, query)
	}

	params := url.Values{}
	params.Set("search_query", searchQuery)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	feed, err := c.fetchFeed(ctx, params)
	if err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, entryToPaper(entry))
	}
	return papers, nil
}

// GetPaperDetails 使用 id_list 参数查询单篇论文。
func (c *arxivClient) GetPaperDetails(ctx context.Context, arxivID string) (*Paper, error) {
	params := url.Values{}
	params.Set("id_list", arxivID)

	feed, err := c.fetchFeed(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("arxiv paper not found: %s", arxivID)
	}
	paper := entryToPaper(feed.Entries[0])
	return &paper, nil
}

// fetchFeed 发起 HTTP 请求并解码 Atom feed。
func (c *arxivClient) fetchFeed(ctx context.Context, params url.Values) (*atomFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create arxiv request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv api returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv response: %w", err)
	}
	return &feed, nil
}

// entryToPaper 将一条 Atom 条目映射为 Paper。
func entryToPaper(entry atomEntry) Paper {
	p := Paper{
		ID:        extractArxivID(entry.ID),
		Title:     strings.TrimSpace(entry.Title),
		Abstract:  strings.TrimSpace(entry.Summary),
		URL:       entry.ID,
		Published: entry.Published,
		Updated:   entry.Updated,
	}

	for _, a := range entry.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	for _, cat := range entry.Categories {
		p.Categories = append(p.Categories, cat.Term)
	}
	for _, link := range entry.Links {
		if link.Type == "application/pdf" {
			p.PDFURL = link.Href
		} else if link.Rel == "alternate" && link.Href != "" {
			p.URL = link.Href
		}
	}
	// 没有显式 PDF 链接时，按 arXiv 的 URL 约定改写
	if p.PDFURL == "" && p.URL != "" {
		p.PDFURL = strings.Replace(p.URL, "/abs/", "/pdf/", 1)
	}
	return p
}

// extractArxivID 从条目的 id URL 中提取 arXiv 编号，无法解析时原样返回。
func extractArxivID(idURL string) string {
	if m := arxivIDPattern.FindString(idURL); m != "" {
		return m
	}
	return idURL
}

// arXiv Atom feed 的 XML 结构。
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Authors    []atomAuthor   `xml:"author"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}
