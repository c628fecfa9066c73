// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"

	"quantum-assistant-go/internal/config"
	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/pkg/arxiv"
	"quantum-assistant-go/pkg/llm"
	"quantum-assistant-go/pkg/log"
	"quantum-assistant-go/pkg/serp"
)

// noSourcesFallback 是两路来源都为空时回答中使用的提示语。
const noSourcesFallback = "No specific resources found for this query. " +
	"Try rephrasing your question or using different quantum-related keywords."

// SynthesizedAnswer 是综合论文与网页结果生成的结构化回答。
type SynthesizedAnswer struct {
	Text           string
	PaperCitations []model.CitedSource
	WebCitations   []model.CitedSource
}

// AllCitations 按论文在前、网页在后的顺序返回全部引用。
func (a SynthesizedAnswer) AllCitations() []model.CitedSource {
	combined := make([]model.CitedSource, 0, len(a.PaperCitations)+len(a.WebCitations))
	combined = append(combined, a.PaperCitations...)
	combined = append(combined, a.WebCitations...)
	return combined
}

// ResponseSynthesizer 定义了回答合成的接口。
type ResponseSynthesizer interface {
	// Build 将论文与网页结果合成为一段带引用标记的回答。
	// 给定相同输入时输出确定；LLM 仅作为可选的润色协作方，失败时降级到模板回答。
	Build(ctx context.Context, query string, papers []arxiv.Paper, webResults []serp.Result) SynthesizedAnswer
}

type responseSynthesizer struct {
	cfg          config.ChatConfig
	llmClient    llm.Client
	webAvailable bool
}

// NewResponseSynthesizer 创建一个新的 ResponseSynthesizer 实例。
// llmClient 可以为 nil，此时只产出模板回答。
func NewResponseSynthesizer(cfg config.ChatConfig, llmClient llm.Client, webAvailable bool) ResponseSynthesizer {
	return &responseSynthesizer{cfg: cfg, llmClient: llmClient, webAvailable: webAvailable}
}

// Build 产出固定结构的回答文档：开头一句呼应查询主题，然后是论文与网页
// 两个小节（各自截断到展示上限），最后是一句总结。
func (s *responseSynthesizer) Build(ctx context.Context, query string, papers []arxiv.Paper, webResults []serp.Result) SynthesizedAnswer {
	answer := SynthesizedAnswer{
		Text:           s.buildTemplate(query, papers, webResults),
		PaperCitations: paperCitations(papers, s.cfg.DisplayCap),
		WebCitations:   webCitations(webResults, s.cfg.DisplayCap),
	}

	// 可选：让 LLM 基于已组装的上下文生成更连贯的正文。
	// LLM 输出被当作不透明文本使用，任何失败都回退到模板回答。
	if s.llmClient != nil && s.llmClient.Available() && (len(papers) > 0 || len(webResults) > 0) {
		if prose, err := s.generateProse(ctx, query, answer.Text); err == nil && prose != "" {
			answer.Text = prose
		} else if err != nil {
			log.Warnf("[Synthesizer] LLM 润色失败，使用模板回答: %v", err)
		}
	}

	return answer
}

// buildTemplate 生成确定性的模板回答。
func (s *responseSynthesizer) buildTemplate(query string, papers []arxiv.Paper, webResults []serp.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on your query about '%s', here's what I found from quantum computing and quantum mechanics research:\n\n", query)

	// 论文小节
	if len(papers) > 0 {
		fmt.Fprintf(&b, "📚 **Research Papers (%d found):**\n\n", len(papers))
		shown := papers
		if len(shown) > s.cfg.DisplayCap {
			shown = shown[:s.cfg.DisplayCap]
		}
		for i, paper := range shown {
			fmt.Fprintf(&b, "%d. **%s**\n", i+1, paper.Title)
			fmt.Fprintf(&b, "   Authors: %s\n", joinAuthors(paper.Authors, 3))
			fmt.Fprintf(&b, "   Summary: %s\n", truncate(paper.Abstract, s.cfg.AbstractSnippetLen))
			fmt.Fprintf(&b, "   [arXiv:%s](%s)\n\n", paper.ID, paper.URL)
		}
		if len(papers) > s.cfg.DisplayCap {
			fmt.Fprintf(&b, "   ... and %d more papers available\n\n", len(papers)-s.cfg.DisplayCap)
		}
	} else {
		b.WriteString("📚 **Research Papers:** No arXiv papers found for this specific query.\n\n")
	}

	// 网页小节
	if len(webResults) > 0 {
		fmt.Fprintf(&b, "🌐 **Web Resources (%d found):**\n\n", len(webResults))
		shown := webResults
		if len(shown) > s.cfg.DisplayCap {
			shown = shown[:s.cfg.DisplayCap]
		}
		for i, result := range shown {
			fmt.Fprintf(&b, "%d. **%s**\n", i+1, result.Title)
			fmt.Fprintf(&b, "   %s\n", result.Snippet)
			fmt.Fprintf(&b, "   Source: [%s](%s)\n\n", sourceLabel(result), result.Link)
		}
		if len(webResults) > s.cfg.DisplayCap {
			fmt.Fprintf(&b, "   ... and %d more resources available\n\n", len(webResults)-s.cfg.DisplayCap)
		}
	} else if !s.webAvailable {
		b.WriteString("🌐 **Web Resources:** Web search not available (search credential not configured)\n\n")
	} else {
		b.WriteString("🌐 **Web Resources:** No web results found.\n\n")
	}

	// 总结
	if len(papers) > 0 || len(webResults) > 0 {
		b.WriteString("💡 **Key Insights:** The resources above provide comprehensive information about your quantum computing/mechanics query. " +
			"Research papers offer peer-reviewed academic insights, while web resources provide current developments and practical information.")
	} else {
		b.WriteString("⚠️ " + noSourcesFallback)
	}

	return b.String()
}

// generateProse 把模板化的上下文交给 LLM 生成连贯回答。
func (s *responseSynthesizer) generateProse(ctx context.Context, query, contextText string) (string, error) {
	systemPrompt := "You are a quantum computing and quantum mechanics expert assistant. " +
		"Answer the user's question using only the provided research papers and web sources. " +
		"Keep the inline citation markers (e.g. [arXiv:2301.07041]) next to the claims they support."
	userPrompt := fmt.Sprintf("Sources:\n\n%s\n\nQuestion: %s\n\nAnswer:", contextText, query)
	return s.llmClient.Complete(ctx, systemPrompt, userPrompt)
}

// paperCitations 生成论文引用列表，截断到展示上限，保持输入顺序。
func paperCitations(papers []arxiv.Paper, limit int) []model.CitedSource {
	if len(papers) > limit {
		papers = papers[:limit]
	}
	citations := make([]model.CitedSource, 0, len(papers))
	for _, paper := range papers {
		citations = append(citations, model.CitedSource{
			Type:     "arxiv",
			ID:       paper.ID,
			Title:    paper.Title,
			URL:      paper.URL,
			Citation: fmt.Sprintf("[arXiv:%s]", paper.ID),
		})
	}
	return citations
}

// webCitations 生成网页引用列表，截断到展示上限，保持输入顺序。
func webCitations(results []serp.Result, limit int) []model.CitedSource {
	if len(results) > limit {
		results = results[:limit]
	}
	citations := make([]model.CitedSource, 0, len(results))
	for _, result := range results {
		citations = append(citations, model.CitedSource{
			Type:     "web",
			Title:    result.Title,
			URL:      result.Link,
			Source:   result.Source,
			Citation: fmt.Sprintf("[Source: %s]", sourceLabel(result)),
		})
	}
	return citations
}

// joinAuthors 拼接前 n 位作者。
func joinAuthors(authors []string, n int) string {
	if len(authors) > n {
		authors = authors[:n]
	}
	return strings.Join(authors, ", ")
}

// truncate 将文本截断到 maxLen 个字符并追加省略号。
// 按 rune 截断，多字节字符不会被从中间切断。
func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

// sourceLabel 返回网页结果的来源标签，缺省为 "Web"。
func sourceLabel(result serp.Result) string {
	if result.Source != "" {
		return result.Source
	}
	return "Web"
}
