package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"quantum-assistant-go/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAbstract = "We propose a novel approach to quantum error correction. " +
	"The method combines surface codes with machine learning decoders. " +
	"Our results demonstrate a significant improvement in logical error rates. " +
	"We conclude that hybrid decoders are a promising direction for fault-tolerant quantum computing. " +
	"Additional experiments on superconducting hardware confirm the findings. " +
	"The approach achieves state-of-the-art performance across all tested code distances."

func TestSummaryService_FallbackSummarize(t *testing.T) {
	log.InitForTest()
	svc := NewSummaryService(nil)

	result := svc.Summarize(context.Background(), sampleAbstract, 200)

	assert.Equal(t, "smart-extraction", result.Model)
	assert.Contains(t, result.Summary, "Smart Summary")
	// 正文不超过长度预算
	body := strings.TrimPrefix(result.Summary, "📝 Smart Summary:\n\n")
	assert.LessOrEqual(t, len(body), 200)
}

func TestSummaryService_ShortTextReturnedVerbatim(t *testing.T) {
	log.InitForTest()
	svc := NewSummaryService(nil)

	short := "Qubits are two-level quantum systems."
	result := svc.Summarize(context.Background(), short, 500)

	assert.Equal(t, short, result.Summary)
}

func TestSummaryService_FallbackTruncationMultibyte(t *testing.T) {
	log.InitForTest()
	svc := NewSummaryService(nil)

	// 没有可用的完整句子时退化为直接截断，多字节字符不能被切坏
	text := strings.Repeat("ééé. ", 60)
	result := svc.Summarize(context.Background(), text, 100)

	assert.Equal(t, "smart-extraction", result.Model)
	assert.True(t, utf8.ValidString(result.Summary))
	assert.True(t, strings.HasSuffix(result.Summary, "..."))
	assert.Equal(t, 103, utf8.RuneCountInString(result.Summary))
}

func TestSummaryService_SummarizeDeterministic(t *testing.T) {
	log.InitForTest()
	svc := NewSummaryService(nil)

	first := svc.Summarize(context.Background(), sampleAbstract, 300)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, svc.Summarize(context.Background(), sampleAbstract, 300))
	}
}

func TestSummaryService_AnalyzeTypes(t *testing.T) {
	log.InitForTest()
	svc := NewSummaryService(nil)

	for _, analysisType := range []string{"general", "methodology", "findings", "contributions"} {
		result := svc.Analyze(context.Background(), sampleAbstract, analysisType)
		assert.Equal(t, analysisType, result.Type)
		assert.Equal(t, "smart-extraction", result.Model)
		assert.NotEmpty(t, result.Content)
	}
}

func TestSummaryService_AnalyzeUnknownTypeFallsBackToGeneral(t *testing.T) {
	log.InitForTest()
	svc := NewSummaryService(nil)

	result := svc.Analyze(context.Background(), sampleAbstract, "nonsense")
	assert.Equal(t, "general", result.Type)
	assert.Contains(t, result.Content, "General Analysis")
}

func TestExtractKeywords(t *testing.T) {
	keywords := extractKeywords("quantum quantum quantum error error correction the and of", 3)
	require.NotEmpty(t, keywords)
	assert.Equal(t, "quantum", keywords[0])
	assert.Equal(t, "error", keywords[1])
	// 停用词与短词被过滤
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "and")
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First sentence here. Second one follows! Third asks a question? Tiny.")
	require.Len(t, sentences, 3)
	assert.Equal(t, "First sentence here.", sentences[0])
}
