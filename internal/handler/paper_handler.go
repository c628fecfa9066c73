// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"

	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/internal/service"
	"quantum-assistant-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// PaperHandler 负责处理论文检索、收藏与 AI 摘要相关的 API 请求。
type PaperHandler struct {
	paperService   service.PaperService
	summaryService service.SummaryService
}

// NewPaperHandler 创建一个新的 PaperHandler 实例。
func NewPaperHandler(paperService service.PaperService, summaryService service.SummaryService) *PaperHandler {
	return &PaperHandler{paperService: paperService, summaryService: summaryService}
}

// SearchRequest 定义了论文检索 API 的请求体结构。
type SearchRequest struct {
	Query      string `json:"query" binding:"required"`
	MaxResults int    `json:"max_results"`
}

// Search 处理论文检索请求。
func (h *PaperHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：query 不能为空",
		})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "unauthorized"})
		return
	}

	papers, err := h.paperService.Search(c.Request.Context(), user.ID, req.Query, req.MaxResults)
	if err != nil {
		log.Errorf("Search: arXiv search failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    http.StatusBadGateway,
			"message": "论文检索服务暂时不可用",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"query":  req.Query,
			"papers": papers,
			"count":  len(papers),
		},
	})
}

// SavePaper 处理论文收藏请求。
func (h *PaperHandler) SavePaper(c *gin.Context) {
	var req model.SavePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：paper_id 和 title 不能为空",
		})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "unauthorized"})
		return
	}

	if err := h.paperService.SavePaper(c.Request.Context(), user.ID, req); err != nil {
		log.Errorf("SavePaper: Failed for user %d, paper %s, error: %v", user.ID, req.PaperID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "收藏论文失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Paper saved successfully",
	})
}

// ListSaved 处理获取论文收藏列表的请求。
func (h *PaperHandler) ListSaved(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "unauthorized"})
		return
	}

	papers, err := h.paperService.ListSaved(c.Request.Context(), user.ID)
	if err != nil {
		log.Errorf("ListSaved: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取收藏列表失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"papers": papers, "count": len(papers)},
	})
}

// DeleteSaved 处理删除论文收藏的请求。
func (h *PaperHandler) DeleteSaved(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "unauthorized"})
		return
	}

	paperID := c.Param("paperId")
	if err := h.paperService.DeleteSaved(c.Request.Context(), user.ID, paperID); err != nil {
		log.Errorf("DeleteSaved: Failed for user %d, paper %s, error: %v", user.ID, paperID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "删除收藏失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Paper deleted",
	})
}

// QueryHistory 处理获取检索历史的请求。limit 从查询参数读取，默认 50。
func (h *PaperHandler) QueryHistory(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.paperService.QueryHistory(c.Request.Context(), user.ID, limit)
	if err != nil {
		log.Errorf("QueryHistory: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取检索历史失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"queries": records, "count": len(records)},
	})
}

// SummarizeRequest 定义了摘要生成 API 的请求体结构。
type SummarizeRequest struct {
	Text      string `json:"text" binding:"required"`
	MaxLength int    `json:"max_length"`
}

// Summarize 处理论文摘要请求。LLM 不可用时降级到抽取式摘要，不会失败。
func (h *PaperHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：text 不能为空",
		})
		return
	}

	result := h.summaryService.Summarize(c.Request.Context(), req.Text, req.MaxLength)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    result,
	})
}

// AnalyzeRequest 定义了论文分析 API 的请求体结构。
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
	Type string `json:"type"` // general / methodology / findings / contributions
}

// Analyze 处理论文分析请求。
func (h *PaperHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：text 不能为空",
		})
		return
	}

	result := h.summaryService.Analyze(c.Request.Context(), req.Text, req.Type)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    result,
	})
}
