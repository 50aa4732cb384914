package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/service"
	"teachload/backend/pkg/response"
)

// ArchiveHandler 归档模块 HTTP 处理器
type ArchiveHandler struct {
	archiveSvc service.ArchiveService
}

// NewArchiveHandler 创建 ArchiveHandler
func NewArchiveHandler(archiveSvc service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archiveSvc: archiveSvc}
}

// ArchivePlan 手动归档单份教学计划
// POST /api/v1/archives
func (h *ArchiveHandler) ArchivePlan(c *gin.Context) {
	var req dto.ArchivePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.archiveSvc.ArchivePlan(c.Request.Context(), &req, callerID); err != nil {
		h.handleArchiveError(c, err)
		return
	}

	response.Created(c, nil)
}

// ListArchives 查询归档记录（教授仅可见本人记录）
// GET /api/v1/archives
func (h *ArchiveHandler) ListArchives(c *gin.Context) {
	var req dto.ArchiveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "查询参数无效")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, total, err := h.archiveSvc.ListArchived(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetArchive 获取归档详情（含解析后的快照）
// GET /api/v1/archives/:id
func (h *ArchiveHandler) GetArchive(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "归档ID不能为空")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	detail, err := h.archiveSvc.GetArchivedDetail(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}

	response.OK(c, detail)
}

// RestoreArchive 将归档恢复为活动草稿（消费归档行）
// POST /api/v1/archives/:id/restore
func (h *ArchiveHandler) RestoreArchive(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "归档ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.archiveSvc.RestoreArchivedPlanning(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}

	response.OK(c, result)
}

// CleanupArchives 清理超期归档（手动归档豁免）
// POST /api/v1/archives/cleanup
func (h *ArchiveHandler) CleanupArchives(c *gin.Context) {
	var req dto.CleanupArchivesRequest
	// body 可省略：使用规划设置中的保留天数
	_ = c.ShouldBindJSON(&req)

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.archiveSvc.CleanupOldArchives(c.Request.Context(), req.OlderThanDays, callerID)
	if err != nil {
		h.handleArchiveError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ArchiveHandler) handleArchiveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrArchiveNotFound):
		response.NotFound(c, 16001, "归档记录不存在")
	case errors.Is(err, service.ErrSnapshotCorrupt):
		response.Error(c, 500, 16002, "归档快照已损坏，无法恢复")
	case errors.Is(err, service.ErrArchiveDateInvalid):
		response.BadRequest(c, 16003, "归档查询日期无效")
	case errors.Is(err, service.ErrPlanNotFound):
		response.NotFound(c, 15001, "教学计划不存在")
	case errors.Is(err, service.ErrPhaseNotFound):
		response.NotFound(c, 14001, "规划阶段不存在")
	default:
		response.InternalError(c)
	}
}

