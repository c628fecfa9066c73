// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"quantum-assistant-go/internal/service"
	"quantum-assistant-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理与会话管理相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// ListSessions 处理获取用户会话列表的请求。
func (h *ConversationHandler) ListSessions(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)

	sessions, err := h.service.ListSessions(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to list sessions",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"sessions": sessions},
	})
}

// GetSession 处理获取单个会话消息历史的请求。
func (h *ConversationHandler) GetSession(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)
	sessionID := c.Param("sessionId")

	turns, err := h.service.GetSessionTurns(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    http.StatusNotFound,
				"message": "Session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to retrieve session history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"session_id": sessionID,
			"messages":   turns,
		},
	})
}

// DeleteSession 处理删除会话的请求。
func (h *ConversationHandler) DeleteSession(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)
	sessionID := c.Param("sessionId")

	if err := h.service.DeleteSession(c.Request.Context(), claims.UserID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    http.StatusNotFound,
				"message": "Session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to delete session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Session deleted",
	})
}
