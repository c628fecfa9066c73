package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/internal/service"
	"quantum-assistant-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatService 是 service.ChatService 的测试替身。
type fakeChatService struct {
	result *model.ChatResult
	err    error
}

func (f *fakeChatService) HandleQuery(ctx context.Context, userID uint, req model.ChatRequest) (*model.ChatResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// injectUser 在测试中代替 AuthMiddleware 注入用户对象。
func injectUser(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	}
}

func newChatTestRouter(chatService service.ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewChatHandler(chatService, service.NewQueryValidator())
	r.POST("/api/v1/chat", injectUser(&model.User{ID: 7, Username: "alice"}), h.Chat)
	r.GET("/api/v1/chat/topics", h.Topics)
	return r
}

func TestChatHandler_SuccessEnvelope(t *testing.T) {
	log.InitForTest()
	svc := &fakeChatService{result: &model.ChatResult{
		Success:      true,
		Query:        "what is entanglement",
		Answer:       "Entanglement is... [arXiv:2301.07001]",
		SourcesCount: &model.SourcesCount{Papers: 1, WebResults: 0},
		SessionID:    "session-1",
	}}
	router := newChatTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"query": "what is entanglement"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "what is entanglement", body["query"])
	assert.Contains(t, body["answer"], "[arXiv:2301.07001]")
	assert.Equal(t, "session-1", body["session_id"])

	counts := body["sources_count"].(map[string]interface{})
	assert.Equal(t, float64(1), counts["papers"])
	assert.Equal(t, float64(0), counts["web_results"])
}

func TestChatHandler_RejectionEnvelope(t *testing.T) {
	log.InitForTest()
	svc := &fakeChatService{result: &model.ChatResult{
		Success:         false,
		Query:           "best pizza",
		Error:           "I'm a specialized Quantum Computing & Quantum Mechanics Assistant.",
		SuggestedTopics: []string{"qubits and quantum gates"},
		SessionID:       "session-1",
	}}
	router := newChatTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"query": "best pizza"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["suggested_topics"])
	// 拒绝响应不携带回答与来源计数
	assert.NotContains(t, body, "answer")
	assert.NotContains(t, body, "sources_count")
}

func TestChatHandler_MissingQuery(t *testing.T) {
	log.InitForTest()
	router := newChatTestRouter(&fakeChatService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_InternalErrorIsOpaque(t *testing.T) {
	log.InitForTest()
	svc := &fakeChatService{err: errors.New("redis connection refused at 10.0.0.5")}
	router := newChatTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"query": "quantum entanglement"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	// 内部错误细节不泄漏到响应体
	assert.NotContains(t, w.Body.String(), "redis")
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestChatHandler_Topics(t *testing.T) {
	log.InitForTest()
	router := newChatTestRouter(&fakeChatService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/topics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Topics []string `json:"topics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Topics, 8)
}
