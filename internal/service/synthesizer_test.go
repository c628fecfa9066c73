package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"quantum-assistant-go/internal/config"
	"quantum-assistant-go/pkg/arxiv"
	"quantum-assistant-go/pkg/log"
	"quantum-assistant-go/pkg/serp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		DefaultMaxPapers:     10,
		DefaultMaxWebResults: 5,
		MaxPapersCap:         50,
		MaxWebResultsCap:     10,
		DisplayCap:           3,
		AbstractSnippetLen:   200,
		CategoryFilter:       "quant-ph",
		MaxSessionTurns:      20,
	}
}

func testPaper(i int) arxiv.Paper {
	return arxiv.Paper{
		ID:       fmt.Sprintf("2301.0700%d", i),
		Title:    fmt.Sprintf("Quantum Paper %d", i),
		Authors:  []string{"Alice", "Bob", "Carol", "Dave"},
		Abstract: strings.Repeat("entanglement ", 30),
		URL:      fmt.Sprintf("http://arxiv.org/abs/2301.0700%d", i),
	}
}

func testWebResult(i int) serp.Result {
	return serp.Result{
		Title:   fmt.Sprintf("Web Result %d", i),
		Link:    fmt.Sprintf("https://example.com/%d", i),
		Snippet: "An overview of quantum computing.",
		Source:  "example.com",
	}
}

func TestSynthesizer_NoSourcesFallback(t *testing.T) {
	log.InitForTest()
	s := NewResponseSynthesizer(testChatConfig(), nil, true)

	answer := s.Build(context.Background(), "quantum entanglement", nil, nil)

	assert.Contains(t, answer.Text, "No specific resources found")
	assert.Empty(t, answer.PaperCitations)
	assert.Empty(t, answer.WebCitations)
}

func TestSynthesizer_CitationMarkers(t *testing.T) {
	log.InitForTest()
	s := NewResponseSynthesizer(testChatConfig(), nil, true)

	papers := []arxiv.Paper{testPaper(1), testPaper(2)}
	answer := s.Build(context.Background(), "qubits", papers, []serp.Result{testWebResult(1)})

	assert.Contains(t, answer.Text, "[arXiv:2301.07001]")
	assert.Contains(t, answer.Text, "[arXiv:2301.07002]")
	assert.Contains(t, answer.Text, "Source: [example.com]")

	require.Len(t, answer.PaperCitations, 2)
	assert.Equal(t, "[arXiv:2301.07001]", answer.PaperCitations[0].Citation)
	require.Len(t, answer.WebCitations, 1)
	assert.Equal(t, "[Source: example.com]", answer.WebCitations[0].Citation)
}

func TestSynthesizer_DisplayCap(t *testing.T) {
	log.InitForTest()
	s := NewResponseSynthesizer(testChatConfig(), nil, true)

	papers := make([]arxiv.Paper, 7)
	for i := range papers {
		papers[i] = testPaper(i)
	}
	answer := s.Build(context.Background(), "quantum computing", papers, nil)

	// 只展示前 3 篇，其余以溢出提示带过
	assert.Contains(t, answer.Text, "Research Papers (7 found)")
	assert.Contains(t, answer.Text, "... and 4 more papers available")
	assert.NotContains(t, answer.Text, "Quantum Paper 3")
	assert.Len(t, answer.PaperCitations, 3)
}

func TestSynthesizer_AbstractTruncation(t *testing.T) {
	log.InitForTest()
	s := NewResponseSynthesizer(testChatConfig(), nil, true)

	answer := s.Build(context.Background(), "decoherence", []arxiv.Paper{testPaper(1)}, nil)

	// 摘要被截断到 200 字符并追加省略号
	for _, line := range strings.Split(answer.Text, "\n") {
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "Summary: ") {
			body := strings.TrimPrefix(trimmed, "Summary: ")
			assert.Len(t, body, 203)
			assert.True(t, strings.HasSuffix(body, "..."))
			return
		}
	}
	t.Fatal("summary line not found in answer")
}

func TestSynthesizer_AbstractTruncationMultibyte(t *testing.T) {
	log.InitForTest()
	s := NewResponseSynthesizer(testChatConfig(), nil, true)

	// 摘要含多字节字符且截断点落在字符中间
	paper := testPaper(1)
	paper.Abstract = strings.Repeat("é", 199) + "量子もつれ"
	answer := s.Build(context.Background(), "decoherence", []arxiv.Paper{paper}, nil)

	require.True(t, utf8.ValidString(answer.Text))
	for _, line := range strings.Split(answer.Text, "\n") {
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "Summary: ") {
			body := strings.TrimPrefix(trimmed, "Summary: ")
			assert.Equal(t, 203, utf8.RuneCountInString(body))
			assert.True(t, strings.HasSuffix(body, "..."))
			return
		}
	}
	t.Fatal("summary line not found in answer")
}

func TestSynthesizer_Deterministic(t *testing.T) {
	log.InitForTest()
	s := NewResponseSynthesizer(testChatConfig(), nil, true)

	papers := []arxiv.Paper{testPaper(1)}
	web := []serp.Result{testWebResult(1)}

	first := s.Build(context.Background(), "quantum supremacy", papers, web)
	for i := 0; i < 5; i++ {
		again := s.Build(context.Background(), "quantum supremacy", papers, web)
		assert.Equal(t, first, again)
	}
}

func TestSynthesizer_WebUnavailableNotice(t *testing.T) {
	log.InitForTest()
	s := NewResponseSynthesizer(testChatConfig(), nil, false)

	answer := s.Build(context.Background(), "quantum gates", []arxiv.Paper{testPaper(1)}, nil)

	assert.Contains(t, answer.Text, "Web search not available")
}
