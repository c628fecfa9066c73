package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryValidator_InDomain(t *testing.T) {
	v := NewQueryValidator()

	tests := []struct {
		name  string
		query string
	}{
		{"plain keyword", "what is quantum entanglement?"},
		{"algorithm name", "explain Shor's algorithm"},
		{"hardware term", "how does a transmon work"},
		{"mixed case", "Tell me about QUBITS"},
		{"software term", "getting started with qiskit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.query)
			assert.True(t, result.InDomain)
			assert.NotEmpty(t, result.MatchedKeywords)
			assert.Empty(t, result.SuggestedTopics)
		})
	}
}

func TestQueryValidator_OutOfDomain(t *testing.T) {
	v := NewQueryValidator()

	tests := []struct {
		name  string
		query string
	}{
		{"cooking", "how do I bake sourdough bread"},
		{"sports", "who won the world cup"},
		{"empty", ""},
		{"whitespace only", "   \t  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.query)
			assert.False(t, result.InDomain)
			assert.Empty(t, result.MatchedKeywords)
			require.Len(t, result.SuggestedTopics, 8)
		})
	}
}

func TestQueryValidator_Deterministic(t *testing.T) {
	v := NewQueryValidator()

	first := v.Validate("entanglement and qubit decoherence in quantum computing")
	for i := 0; i < 10; i++ {
		again := v.Validate("entanglement and qubit decoherence in quantum computing")
		assert.Equal(t, first, again)
	}
}

func TestQueryValidator_MatchedKeywordsSorted(t *testing.T) {
	v := NewQueryValidator()

	result := v.Validate("superposition before entanglement")
	require.True(t, result.InDomain)
	assert.IsNonDecreasing(t, result.MatchedKeywords)
}

func TestQueryValidator_SuggestedTopicsFixed(t *testing.T) {
	v := NewQueryValidator()

	topics := v.SuggestedTopics(0)
	require.Len(t, topics, 8)
	assert.Equal(t, topics, v.SuggestedTopics(0))

	assert.Len(t, v.SuggestedTopics(3), 3)
	// 超出列表长度时返回完整列表而非默认数量
	assert.Len(t, v.SuggestedTopics(100), 14)
}

func TestQueryValidator_RejectionMessage(t *testing.T) {
	v := NewQueryValidator()

	msg := v.RejectionMessage()
	assert.Contains(t, msg, "Quantum Computing")
	assert.Contains(t, msg, "quantum entanglement")
}
