package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/pkg/arxiv"
	"quantum-assistant-go/pkg/log"
	"quantum-assistant-go/pkg/serp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeArxivClient 是 arxiv.Client 的测试替身。
type fakeArxivClient struct {
	papers []arxiv.Paper
	err    error
	calls  int32
}

func (f *fakeArxivClient) Search(ctx context.Context, query string, maxResults int, categoryFilter string) ([]arxiv.Paper, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.papers, nil
}

func (f *fakeArxivClient) GetPaperDetails(ctx context.Context, arxivID string) (*arxiv.Paper, error) {
	return nil, errors.New("not implemented")
}

// fakeSerpClient 是 serp.Client 的测试替身。
type fakeSerpClient struct {
	results []serp.Result
	err     error
	calls   int32
}

func (f *fakeSerpClient) Search(ctx context.Context, query string, maxResults int) ([]serp.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSerpClient) Available() bool { return true }

// fakeConversationRepo 是内存版的会话存储。
type fakeConversationRepo struct {
	mu       sync.Mutex
	sessions map[string][]model.ChatMessage
	nextID   int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{sessions: make(map[string][]model.ChatMessage)}
}

func (f *fakeConversationRepo) key(userID uint, sessionID string) string {
	return fmt.Sprintf("%d:%s", userID, sessionID)
}

func (f *fakeConversationRepo) CreateSession(ctx context.Context, userID uint) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	sessionID := fmt.Sprintf("session-%d", f.nextID)
	f.sessions[f.key(userID, sessionID)] = []model.ChatMessage{}
	return sessionID, nil
}

func (f *fakeConversationRepo) SessionExists(ctx context.Context, userID uint, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[f.key(userID, sessionID)]
	return ok, nil
}

func (f *fakeConversationRepo) GetTurns(ctx context.Context, userID uint, sessionID string) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[f.key(userID, sessionID)], nil
}

func (f *fakeConversationRepo) AppendTurns(ctx context.Context, userID uint, sessionID string, turns ...model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.key(userID, sessionID)
	f.sessions[key] = append(f.sessions[key], turns...)
	return nil
}

func (f *fakeConversationRepo) ListSessions(ctx context.Context, userID uint) ([]model.SessionInfo, error) {
	return nil, nil
}

func (f *fakeConversationRepo) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, f.key(userID, sessionID))
	return nil
}

func newTestChatService(arxivClient *fakeArxivClient, serpClient *fakeSerpClient, repo *fakeConversationRepo) ChatService {
	cfg := testChatConfig()
	return NewChatService(
		NewQueryValidator(),
		arxivClient,
		serpClient,
		NewResponseSynthesizer(cfg, nil, true),
		repo,
		cfg,
	)
}

func TestChatService_AcceptedQueryCitesPapers(t *testing.T) {
	log.InitForTest()
	arxivClient := &fakeArxivClient{papers: []arxiv.Paper{testPaper(1)}}
	serpClient := &fakeSerpClient{results: []serp.Result{testWebResult(1)}}
	repo := newFakeConversationRepo()
	svc := newTestChatService(arxivClient, serpClient, repo)

	result, err := svc.HandleQuery(context.Background(), 7, model.ChatRequest{Query: "what is quantum entanglement"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "what is quantum entanglement", result.Query)
	assert.Contains(t, result.Answer, "[arXiv:2301.07001]")
	require.NotNil(t, result.SourcesCount)
	assert.Equal(t, 1, result.SourcesCount.Papers)
	assert.Equal(t, 1, result.SourcesCount.WebResults)
	assert.NotEmpty(t, result.SessionID)

	// 助手消息携带引用来源
	turns, _ := repo.GetTurns(context.Background(), 7, result.SessionID)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
	require.NotEmpty(t, turns[1].Sources)
	assert.Equal(t, "2301.07001", turns[1].Sources[0].ID)
}

func TestChatService_RejectedQuerySkipsSources(t *testing.T) {
	log.InitForTest()
	arxivClient := &fakeArxivClient{papers: []arxiv.Paper{testPaper(1)}}
	serpClient := &fakeSerpClient{}
	repo := newFakeConversationRepo()
	svc := newTestChatService(arxivClient, serpClient, repo)

	result, err := svc.HandleQuery(context.Background(), 7, model.ChatRequest{Query: "best pizza in town"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Len(t, result.SuggestedTopics, 8)
	assert.Empty(t, result.Answer)
	assert.Nil(t, result.SourcesCount)

	// 域外查询不触发任何外部检索
	assert.Zero(t, atomic.LoadInt32(&arxivClient.calls))
	assert.Zero(t, atomic.LoadInt32(&serpClient.calls))

	// 拒绝轮同样被持久化，助手消息携带建议话题且没有来源
	turns, _ := repo.GetTurns(context.Background(), 7, result.SessionID)
	require.Len(t, turns, 2)
	assert.Empty(t, turns[1].Sources)
	assert.Len(t, turns[1].SuggestedTopics, 8)
}

func TestChatService_SourceFailureDegradesToEmpty(t *testing.T) {
	log.InitForTest()
	arxivClient := &fakeArxivClient{err: errors.New("upstream timeout")}
	serpClient := &fakeSerpClient{results: []serp.Result{testWebResult(1)}}
	repo := newFakeConversationRepo()
	svc := newTestChatService(arxivClient, serpClient, repo)

	result, err := svc.HandleQuery(context.Background(), 7, model.ChatRequest{Query: "quantum error correction"})
	require.NoError(t, err)

	// 一路失败不影响整体成功，失败的一路计数为 0
	assert.True(t, result.Success)
	require.NotNil(t, result.SourcesCount)
	assert.Equal(t, 0, result.SourcesCount.Papers)
	assert.Equal(t, 1, result.SourcesCount.WebResults)
	assert.NotContains(t, result.Answer, "upstream timeout")
}

func TestChatService_SessionAccumulatesOrderedTurns(t *testing.T) {
	log.InitForTest()
	arxivClient := &fakeArxivClient{papers: []arxiv.Paper{testPaper(1)}}
	serpClient := &fakeSerpClient{}
	repo := newFakeConversationRepo()
	svc := newTestChatService(arxivClient, serpClient, repo)

	first, err := svc.HandleQuery(context.Background(), 7, model.ChatRequest{Query: "explain superposition"})
	require.NoError(t, err)

	second, err := svc.HandleQuery(context.Background(), 7, model.ChatRequest{
		Query:     "and what about decoherence",
		SessionID: first.SessionID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	turns, _ := repo.GetTurns(context.Background(), 7, first.SessionID)
	require.Len(t, turns, 4)
	assert.Equal(t, []string{"user", "assistant", "user", "assistant"},
		[]string{turns[0].Role, turns[1].Role, turns[2].Role, turns[3].Role})
	assert.Equal(t, "explain superposition", turns[0].Content)
	assert.Equal(t, "and what about decoherence", turns[2].Content)
}

func TestChatService_UnknownSessionGetsReplaced(t *testing.T) {
	log.InitForTest()
	repo := newFakeConversationRepo()
	svc := newTestChatService(&fakeArxivClient{}, &fakeSerpClient{}, repo)

	result, err := svc.HandleQuery(context.Background(), 7, model.ChatRequest{
		Query:     "quantum teleportation",
		SessionID: "no-such-session",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "no-such-session", result.SessionID)
	assert.NotEmpty(t, result.SessionID)
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 10, clampCount(0, 10, 50))
	assert.Equal(t, 10, clampCount(-3, 10, 50))
	assert.Equal(t, 25, clampCount(25, 10, 50))
	assert.Equal(t, 50, clampCount(500, 10, 50))
}
