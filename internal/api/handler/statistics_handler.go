package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"teachload/backend/internal/service"
	"teachload/backend/pkg/response"
)

// StatisticsHandler 统计模块 HTTP 处理器
type StatisticsHandler struct {
	statsSvc service.StatisticsService
}

// NewStatisticsHandler 创建 StatisticsHandler
func NewStatisticsHandler(statsSvc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsSvc: statsSvc}
}

// GetPhaseStatistics 获取阶段统计
// GET /api/v1/statistics/phases/:id
func (h *StatisticsHandler) GetPhaseStatistics(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "阶段ID不能为空")
		return
	}

	stats, err := h.statsSvc.GetPhaseStatistics(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPhaseNotFound) {
			response.NotFound(c, 14001, "规划阶段不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// GetPhaseHistory 获取阶段历史（含本人提交情况）
// GET /api/v1/statistics/history
func (h *StatisticsHandler) GetPhaseHistory(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	history, err := h.statsSvc.GetPhaseHistory(c.Request.Context(), callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": history})
}

