// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/internal/service"
	"quantum-assistant-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ChatHandler 负责处理量子问答相关的 API 请求。
type ChatHandler struct {
	chatService service.ChatService
	validator   service.QueryValidator
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService, validator service.QueryValidator) *ChatHandler {
	return &ChatHandler{chatService: chatService, validator: validator}
}

// Chat 处理一次量子问答请求。
// 响应体直接使用问答结果的固定结构：校验拒绝时 success 为 false 并附带建议话题，
// 接受时附带回答、来源列表与计数。两种情况 HTTP 状态都是 200。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "query is required",
		})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	result, err := h.chatService.HandleQuery(c.Request.Context(), user.ID, req)
	if err != nil {
		log.Errorf("Chat: Failed to handle query for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal error, please try again later",
		})
		return
	}

	if !result.Success {
		c.JSON(http.StatusOK, gin.H{
			"success":          false,
			"error":            result.Error,
			"query":            result.Query,
			"suggested_topics": result.SuggestedTopics,
			"session_id":       result.SessionID,
		})
		return
	}

	// papers 与 web_results 即使为空也以空数组出现，保持响应结构稳定
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"query":         result.Query,
		"answer":        result.Answer,
		"papers":        result.Papers,
		"web_results":   result.WebResults,
		"sources_count": result.SourcesCount,
		"session_id":    result.SessionID,
	})
}

// Topics 返回助手支持的量子话题列表。
func (h *ChatHandler) Topics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"topics": h.validator.SuggestedTopics(0)},
	})
}

// currentUser 从上下文中取出 AuthMiddleware 注入的用户对象。
func currentUser(c *gin.Context) *model.User {
	userValue, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := userValue.(*model.User)
	if !ok {
		return nil
	}
	return user
}
