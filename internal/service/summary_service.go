// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/pkg/llm"
	"quantum-assistant-go/pkg/log"
)

// defaultSummaryLength 是摘要的默认长度预算（字符数）。
const defaultSummaryLength = 500

// importantWords 是抽取式摘要打分用的学术关键词表。
var importantWords = []string{
	"propose", "present", "show", "demonstrate", "find", "discover",
	"result", "conclude", "method", "approach", "novel", "new",
	"significant", "improve", "performance", "achieve", "develop",
	"introduce", "study", "research", "analysis", "model", "algorithm",
}

// analysisPrompts 是各分析类型对应的 LLM 提示语。
var analysisPrompts = map[string]string{
	"general":       "Analyze this research paper and provide key insights, methodology, and findings.",
	"methodology":   "Explain the methodology used in this research paper.",
	"findings":      "Summarize the key findings and results of this research paper.",
	"contributions": "Discuss the main contributions and potential applications of this research.",
}

// SummaryService 定义了论文摘要与分析的接口。
// LLM 不可用或调用失败时一律降级到确定性的抽取式策略，两个操作都不会因此失败。
type SummaryService interface {
	Summarize(ctx context.Context, text string, maxLength int) model.SummaryResult
	Analyze(ctx context.Context, text, analysisType string) model.AnalysisResult
}

type summaryService struct {
	llmClient llm.Client
}

// NewSummaryService 创建一个新的 SummaryService 实例。
func NewSummaryService(llmClient llm.Client) SummaryService {
	return &summaryService{llmClient: llmClient}
}

// Summarize 生成文本摘要。优先使用 LLM，失败则降级到抽取式摘要。
func (s *summaryService) Summarize(ctx context.Context, text string, maxLength int) model.SummaryResult {
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}

	if s.llmClient != nil && s.llmClient.Available() {
		summary, err := s.llmClient.Complete(ctx,
			"You are a research assistant that summarizes academic papers concisely.",
			fmt.Sprintf("Summarize this research paper abstract in %d characters or less:\n\n%s", maxLength, text),
		)
		if err == nil && summary != "" {
			return model.SummaryResult{Summary: summary, Model: "llm"}
		}
		log.Warnf("[Summary] LLM 摘要失败，使用抽取式摘要: %v", err)
	}

	return model.SummaryResult{Summary: extractiveSummarize(text, maxLength), Model: "smart-extraction"}
}

// Analyze 对论文文本做指定类型的分析。未知类型按 general 处理。
func (s *summaryService) Analyze(ctx context.Context, text, analysisType string) model.AnalysisResult {
	prompt, ok := analysisPrompts[analysisType]
	if !ok {
		analysisType = "general"
		prompt = analysisPrompts["general"]
	}

	if s.llmClient != nil && s.llmClient.Available() {
		content, err := s.llmClient.Complete(ctx,
			"You are a research assistant that analyzes academic papers.",
			fmt.Sprintf("%s\n\nPaper abstract:\n%s", prompt, text),
		)
		if err == nil && content != "" {
			return model.AnalysisResult{Type: analysisType, Content: content, Model: "llm"}
		}
		log.Warnf("[Summary] LLM 分析失败，使用抽取式分析: %v", err)
	}

	return extractiveAnalyze(text, analysisType)
}

// extractiveSummarize 是确定性的抽取式摘要：按句切分，位置与关键词打分，
// 在长度预算内拼接得分最高的句子。
func extractiveSummarize(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return truncate(text, maxLength)
	}

	type scoredSentence struct {
		sentence string
		score    int
	}
	scored := make([]scoredSentence, 0, len(sentences))
	for i, sentence := range sentences {
		score := 0
		// 首尾句通常携带结论信息
		if i == 0 {
			score += 5
		}
		if i == len(sentences)-1 {
			score += 2
		}
		sentenceLower := strings.ToLower(sentence)
		for _, word := range importantWords {
			if strings.Contains(sentenceLower, word) {
				score += 2
			}
		}
		// 偏好中等长度的句子
		if length := len(sentence); length > 40 && length < 200 {
			score += 2
		} else if length < 20 {
			score--
		}
		scored = append(scored, scoredSentence{sentence: sentence, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var b strings.Builder
	for _, item := range scored {
		if b.Len()+len(item.sentence)+2 > maxLength {
			continue
		}
		b.WriteString(item.sentence)
		b.WriteString(" ")
		if b.Len() >= maxLength*85/100 {
			break
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return sentences[0] + "..."
	}
	return "📝 Smart Summary:\n\n" + result
}

// extractiveAnalyze 基于关键词频率与句子打分的确定性分析。
func extractiveAnalyze(text, analysisType string) model.AnalysisResult {
	keywords := extractKeywords(text, 15)
	keySentences := keySentenceBullets(splitSentences(text), 4)

	var b strings.Builder
	switch analysisType {
	case "methodology":
		b.WriteString("📊 Methodology Analysis\n\n")
		b.WriteString("🔬 Identified Keywords:\n")
		b.WriteString(strings.Join(headN(keywords, 5), ", "))
		b.WriteString("\n\n📝 Key Methodological Points:\n")
	case "findings":
		b.WriteString("📊 Findings Analysis\n\n")
		b.WriteString("🔍 Key Result Terms:\n")
		b.WriteString(strings.Join(headN(keywords, 5), ", "))
		b.WriteString("\n\n📈 Main Findings:\n")
	case "contributions":
		b.WriteString("📊 Contributions Analysis\n\n")
		b.WriteString("🎯 Key Concept Terms:\n")
		b.WriteString(strings.Join(headN(keywords, 8), ", "))
		b.WriteString("\n\n💭 Potential Contributions:\n")
	default:
		b.WriteString("📊 General Analysis\n\n")
		b.WriteString("🔑 Key Terms Identified:\n")
		b.WriteString(strings.Join(headN(keywords, 10), ", "))
		b.WriteString("\n\n📋 Main Points:\n")
	}
	b.WriteString(keySentences)

	return model.AnalysisResult{Type: analysisType, Content: b.String(), Model: "smart-extraction"}
}

// splitSentences 按句号/问号/感叹号切分文本，过滤过短的碎片。
func splitSentences(text string) []string {
	replacer := strings.NewReplacer("! ", "!|", "? ", "?|", ". ", ".|")
	parts := strings.Split(replacer.Replace(text), "|")

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) > 10 {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// keySentenceBullets 选出最重要的 count 个句子并渲染为列表。
// 靠前的句子得分更高，长句略微加分。
func keySentenceBullets(sentences []string, count int) string {
	type scoredSentence struct {
		sentence string
		score    float64
	}
	scored := make([]scoredSentence, 0, len(sentences))
	for i, sentence := range sentences {
		score := 1.0 / float64(i+1)
		if len(sentence) > 30 {
			score += 0.5
		}
		scored = append(scored, scoredSentence{sentence: sentence, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > count {
		scored = scored[:count]
	}

	var b strings.Builder
	for _, item := range scored {
		b.WriteString("• ")
		b.WriteString(item.sentence)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// stopWords 是关键词抽取时过滤的常用词。
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an and or but in on at to for of with by from as is was are were been " +
			"be have has had do does did will would could should may might must can this that " +
			"these those then than when where why how all each every both few more most other " +
			"some such no nor not only own same so too very just about into through during " +
			"before after above below between under again further once here there who what which " +
			"whom whose if because while out up down off over also its our their your his her them us") {
		stopWords[w] = struct{}{}
	}
}

// extractKeywords 按词频抽取关键词，剔除停用词与短词。
func extractKeywords(text string, numKeywords int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var cleaned strings.Builder
		for _, r := range word {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				cleaned.WriteRune(r)
			}
		}
		w := cleaned.String()
		if w == "" || len(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	// 频率降序，同频按首次出现的顺序
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > numKeywords {
		order = order[:numKeywords]
	}
	return order
}

// headN 返回切片的前 n 项。
func headN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
