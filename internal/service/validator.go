// Package service 包含了应用的业务逻辑层。
package service

import (
	"sort"
	"strings"

	"quantum-assistant-go/internal/model"
)

// quantumKeywords 是量子计算与量子力学领域的固定词表。
// 校验只做确定性的子串匹配，不依赖任何模型推理。
var quantumKeywords = []string{
	// 量子计算
	"quantum", "qubit", "qubits", "superposition", "entanglement",
	"quantum computing", "quantum computer", "quantum algorithm",
	"quantum gate", "quantum gates", "quantum circuit", "quantum circuits",
	"quantum supremacy", "quantum advantage", "quantum error correction",
	"quantum cryptography", "quantum annealing", "quantum simulation",
	"quantum machine learning", "qec", "nisq",

	// 量子算法
	"shor", "shor's algorithm", "grover", "grover's algorithm",
	"quantum fourier transform", "vqe", "qaoa",
	"variational quantum eigensolver", "quantum approximate optimization",
	"phase estimation", "amplitude amplification", "quantum walk",

	// 量子硬件
	"quantum processor", "quantum chip", "superconducting qubit", "transmon",
	"ion trap", "trapped ion", "photonic qubit", "topological qubit",
	"majorana", "quantum simulator", "dilution refrigerator", "cryogenic",

	// 量子力学
	"quantum mechanics", "quantum physics", "quantum theory",
	"wave function", "wavefunction", "quantum state", "quantum states",
	"quantum system", "quantum systems", "quantum field theory", "qft",
	"schrodinger", "heisenberg", "uncertainty principle", "hamiltonian",
	"eigenvalue", "eigenstate", "hilbert space", "density matrix",
	"quantum measurement", "quantum observable", "quantum operator",
	"quantum tunneling", "quantum coherence", "decoherence",
	"fermion", "boson", "photon",

	// 量子信息
	"quantum information", "quantum communication", "quantum teleportation",
	"quantum key distribution", "qkd", "quantum channel",
	"quantum entropy", "von neumann entropy", "quantum internet",

	// 量子材料与现象
	"quantum dot", "quantum dots", "quantum well", "topological insulator",
	"quantum hall effect", "bell state", "bell inequality", "epr paradox",
	"no-cloning theorem", "quantum interference", "bloch sphere",
	"pauli matrices", "clifford gates", "hadamard gate",
	"cnot gate", "toffoli gate",

	// 量子软件
	"qiskit", "cirq", "pennylane", "quantum programming",
}

// suggestedTopics 是面向被拒绝查询的固定建议话题列表。
// 始终返回同样的前 N 项，不做个性化推荐。
var suggestedTopics = []string{
	"quantum entanglement and Bell's theorem",
	"quantum algorithms (Shor's, Grover's, VQE, QAOA)",
	"quantum error correction and fault-tolerant quantum computing",
	"quantum supremacy and quantum advantage",
	"qubits and quantum gates",
	"superposition and quantum measurement",
	"quantum cryptography and quantum key distribution",
	"quantum computing hardware (superconducting, ion trap, photonic)",
	"quantum mechanics fundamentals",
	"quantum field theory",
	"topological quantum computing",
	"quantum annealing and optimization",
	"NISQ (Noisy Intermediate-Scale Quantum) devices",
	"quantum simulation and quantum chemistry",
}

// defaultTopicCount 是默认返回的建议话题数量。
const defaultTopicCount = 8

// QueryValidator 定义了查询校验的接口。
type QueryValidator interface {
	// Validate 判断查询是否属于量子领域。完全确定性，无外部调用。
	Validate(query string) model.ValidationResult
	// SuggestedTopics 返回固定的建议话题列表的前 count 项。
	// count<=0 时取默认数量；count 超出列表长度时返回完整列表。
	SuggestedTopics(count int) []string
	// RejectionMessage 返回面向用户的拒绝说明。
	RejectionMessage() string
}

type queryValidator struct{}

// NewQueryValidator 创建一个新的 QueryValidator 实例。
func NewQueryValidator() QueryValidator {
	return &queryValidator{}
}

// Validate 对查询做小写归一后与词表做子串匹配。
// 空白查询视为域外。命中词按字典序返回以保证结果可复现。
func (v *queryValidator) Validate(query string) model.ValidationResult {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return model.ValidationResult{
			InDomain:        false,
			MatchedKeywords: []string{},
			SuggestedTopics: v.SuggestedTopics(0),
		}
	}

	queryLower := strings.ToLower(trimmed)

	var matched []string
	for _, keyword := range quantumKeywords {
		if strings.Contains(queryLower, keyword) {
			matched = append(matched, keyword)
		}
	}
	sort.Strings(matched)

	if len(matched) == 0 {
		return model.ValidationResult{
			InDomain:        false,
			MatchedKeywords: []string{},
			SuggestedTopics: v.SuggestedTopics(0),
		}
	}

	return model.ValidationResult{
		InDomain:        true,
		MatchedKeywords: matched,
	}
}

// SuggestedTopics 返回固定话题列表的前 count 项。
func (v *queryValidator) SuggestedTopics(count int) []string {
	if count <= 0 {
		count = defaultTopicCount
	}
	if count > len(suggestedTopics) {
		count = len(suggestedTopics)
	}
	topics := make([]string, count)
	copy(topics, suggestedTopics[:count])
	return topics
}

// RejectionMessage 返回拒绝域外查询时的用户提示。
func (v *queryValidator) RejectionMessage() string {
	var b strings.Builder
	b.WriteString("I'm a specialized Quantum Computing & Quantum Mechanics Assistant. ")
	b.WriteString("Your question doesn't appear to be related to quantum computing or quantum mechanics.\n\n")
	b.WriteString("Here are some quantum topics I can help you with:\n")
	for _, topic := range v.SuggestedTopics(6) {
		b.WriteString("  • ")
		b.WriteString(topic)
		b.WriteString("\n")
	}
	b.WriteString("\nPlease ask a question related to quantum computing or quantum mechanics!")
	return b.String()
}
